package mockapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/kochabx/eduportal/core/auth/jwt"
	middleware "github.com/kochabx/eduportal/middleware/http"
	"github.com/kochabx/eduportal/model"
)

type refreshBody struct {
	Refresh string `json:"refresh"`
}

func (s *Server) login(c *gin.Context) {
	var in model.Credentials
	if !s.bind(c, &in) {
		return
	}
	acct, ok := s.accountByName(in.Username)
	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(in.Password)) != nil {
		detail(c, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}
	pair, err := s.issue(acct.User, true)
	if err != nil {
		detail(c, http.StatusInternalServerError, err.Error())
		return
	}
	s.logins.Add(1)
	s.logger.Debug().Str("username", acct.Username).Msg("mockapi: login")

	resp := model.LoginResponse{TokenPair: pair}
	if s.loginUser {
		u := acct.User
		resp.User = &u
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) refresh(c *gin.Context) {
	s.refreshes.Add(1)

	var body refreshBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Refresh == "" {
		fieldErrors(c, map[string][]string{"refresh": {"This field is required."}})
		return
	}
	claims, err := s.jwt.Parse(body.Refresh, jwt.KindRefresh)
	if err != nil || !s.isLive(body.Refresh, jwt.KindRefresh) {
		detail(c, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}
	id, err := claims.UserID()
	if err != nil {
		detail(c, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}
	acct, ok := s.accountByID(id)
	if !ok {
		detail(c, http.StatusUnauthorized, "User not found")
		return
	}

	pair, err := s.issue(acct.User, s.rotate)
	if err != nil {
		detail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if s.rotate {
		s.revoke(body.Refresh)
	}
	c.JSON(http.StatusOK, pair)
}

// logout 吊销 refresh token，token 无效时同样返回成功
func (s *Server) logout(c *gin.Context) {
	var body refreshBody
	_ = c.ShouldBindJSON(&body)
	if body.Refresh != "" {
		s.revoke(body.Refresh)
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Successfully logged out."})
}

func (s *Server) me(c *gin.Context) {
	claims, _ := middleware.GetClaims[*jwt.Claims](c.Request.Context())
	id, err := claims.UserID()
	if err != nil {
		detail(c, http.StatusUnauthorized, "Given token not valid for any token type")
		return
	}
	acct, ok := s.accountByID(id)
	if !ok {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}
	c.JSON(http.StatusOK, acct.User)
}
