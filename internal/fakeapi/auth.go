package fakeapi

import (
	"net/http"
	"strings"

	"storefront-client/internal/models"

	"github.com/gin-gonic/gin"
)

func (s *Server) findByEmail(email string) *account {
	for _, acc := range s.accounts {
		if strings.EqualFold(acc.user.Email, email) {
			return acc
		}
	}
	return nil
}

func (s *Server) signup(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	if s.findByEmail(req.Email) != nil {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
		return
	}
	u := models.User{ID: newID(), Name: req.Name, Email: req.Email}
	s.accounts[u.ID] = &account{user: u, password: req.Password}
	s.mu.Unlock()

	s.startSession(c, u.ID)
	c.JSON(http.StatusCreated, models.AuthResponse{Message: "Signup successful, verify the OTP sent to your email", Email: u.Email, User: &u})
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	acc := s.findByEmail(req.Email)
	valid := acc != nil && acc.password == req.Password
	var u models.User
	if valid {
		u = acc.user
	}
	s.mu.Unlock()
	if !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid Credentails"})
		return
	}

	s.startSession(c, u.ID)
	c.JSON(http.StatusOK, models.AuthResponse{User: &u})
}

func (s *Server) verifyOTP(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
		OTP    string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[req.UserID]
	var u models.User
	if ok && req.OTP == OTP {
		acc.user.IsVerified = true
		u = acc.user
	}
	s.mu.Unlock()

	if !ok {
		notFound(c, "User")
		return
	}
	if req.OTP != OTP {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Otp is invalid or expired"})
		return
	}

	s.startSession(c, req.UserID)
	c.JSON(http.StatusOK, models.AuthResponse{User: &u})
}

func (s *Server) resendOTP(c *gin.Context) {
	var req struct {
		UserID string `json:"user"`
		Email  string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	_, ok := s.accounts[req.UserID]
	if !ok && req.Email != "" {
		ok = s.findByEmail(req.Email) != nil
	}
	s.mu.Unlock()

	if !ok {
		notFound(c, "User")
		return
	}
	c.JSON(http.StatusCreated, models.AuthResponse{Message: "OTP sent"})
}

func (s *Server) forgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	known := s.findByEmail(req.Email) != nil
	s.mu.Unlock()
	if !known {
		notFound(c, "Email")
		return
	}
	c.JSON(http.StatusOK, models.AuthResponse{Message: "Password reset link sent to " + req.Email})
}

func (s *Server) resetPassword(c *gin.Context) {
	var req struct {
		UserID   string `json:"userId" binding:"required"`
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[req.UserID]
	if !ok || req.Token != ResetToken {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Reset Link is not valid"})
		return
	}
	acc.password = req.Password
	c.JSON(http.StatusOK, models.AuthResponse{Message: "Password updated successfully"})
}

func (s *Server) checkAuth(c *gin.Context) {
	acc := c.MustGet("account").(*account)
	s.mu.Lock()
	u := acc.user
	s.mu.Unlock()
	c.JSON(http.StatusOK, models.AuthResponse{User: &u})
}

func (s *Server) logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}
