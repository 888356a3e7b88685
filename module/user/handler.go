package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"WeGap/logger"
	"WeGap/service/storage"
	"WeGap/tools/security"
)

// Handler serves the account endpoints: login issues the websocket
// credential, check validates one without opening a socket.
type Handler struct {
	accounts storage.AccountStore
	jwtOpts  security.Options
}

func NewHandler(accounts storage.AccountStore, jwtOpts security.Options) *Handler {
	return &Handler{accounts: accounts, jwtOpts: jwtOpts}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// HandleLogin verifies credentials and returns a signed token.
func (h *Handler) HandleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	acct, err := h.accounts.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		logger.Errorf("login lookup: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if acct == nil || !acct.Active || !passwordMatches(acct.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, _, expireAt, err := security.Generate(h.jwtOpts, acct.ID, nil)
	if err != nil {
		logger.Errorf("login sign token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expire_at": expireAt.UTC(),
		"user": gin.H{
			"id":   acct.ID,
			"name": acct.DisplayName,
		},
	})
}

type checkRequest struct {
	Token string `json:"token" binding:"required"`
}

// HandleCheck validates a token and returns its subject.
func (h *Handler) HandleCheck(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}
	claims, err := security.Verify(h.jwtOpts, req.Token, "")
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "user_id": claims.UserID()})
}

// passwordMatches checks the candidate against the stored bcrypt hash.
func passwordMatches(storedHash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(candidate)) == nil
}
