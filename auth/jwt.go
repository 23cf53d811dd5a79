package auth

import (
	"errors"
	"time"

	"product-tour-builder/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateJWT issues a token carrying the editor's user and workspace.
// Identity itself lives in an external service; this token is only the
// proof that the authorization collaborator already vetted the caller.
func GenerateJWT(userID, workspaceID uint64) (string, error) {
	claims := jwt.MapClaims{
		"user_id":      userID,
		"workspace_id": workspaceID,
		"exp":          time.Now().Add(time.Hour * 24 * 3).Unix(), // expires in 3 days
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

func VerifyJWT(tokenString string) (*jwt.Token, error) {
	// parse token
	jwtToken, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.AppConfig.JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	// isValid
	if !jwtToken.Valid {
		return nil, errors.New("token invalid")
	}

	return jwtToken, nil
}

// GetDataFromToken extracts user and workspace ids from a parsed token
func GetDataFromToken(token *jwt.Token) (uint64, uint64, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, 0, errors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, 0, errors.New("user_id missing from token")
	}
	workspaceID, ok := claims["workspace_id"].(float64)
	if !ok {
		return 0, 0, errors.New("workspace_id missing from token")
	}

	return uint64(userID), uint64(workspaceID), nil
}
