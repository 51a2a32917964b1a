package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/vibe-gaming/notes/internal/service"
	"github.com/vibe-gaming/notes/pkg/logger"
	"github.com/vibe-gaming/notes/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const oauthFailedError = "oauth_failed"

func (h *Handler) initAuthRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")

	auth.POST("/signup", h.signup)
	auth.POST("/signin", h.signin)
	auth.POST("/resend-verification-token", h.resendVerificationToken)
	auth.POST("/verify-email", h.verifyEmail)
	auth.POST("/signout", h.userIdentityMiddleware, h.signout)

	auth.GET("/google", h.googleLogin)
	auth.GET("/google/callback", h.googleCallback)
}

type signupInput struct {
	Name  string `json:"name" binding:"required,min=2,max=100"`
	Email string `json:"email" binding:"required,email,max=254"`
	DOB   string `json:"dob" binding:"required,dob"`
}

func (i *signupInput) UnmarshalJSON(data []byte) error {
	type plain signupInput
	if err := json.Unmarshal(data, (*plain)(i)); err != nil {
		return err
	}

	trimSpaces(&i.Name, &i.Email, &i.DOB)
	return nil
}

// @Summary Sign up
// @Tags Auth
// @Description Registers an unverified user and mails an email confirmation code
// @ModuleID signup
// @Accept  json
// @Produce  json
// @Param input body signupInput true "Sign up info"
// @Success 201 {object} messageResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 429 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/signup [post]
func (h *Handler) signup(c *gin.Context) {
	var inp signupInput
	if err := c.ShouldBindJSON(&inp); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	dob, err := validator.ParseDate(inp.DOB)
	if err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	pending, err := h.services.Auth.Signup(c.Request.Context(), service.SignupInput{
		Name:        inp.Name,
		Email:       inp.Email,
		DateOfBirth: dob,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.attachCookie(c, h.config.Cookie.VerificationName, pending.Token, pending.TTL)
	c.JSON(http.StatusCreated, messageResponse{"User registered successfully, verify your email"})
}

type signinInput struct {
	Email string `json:"email" binding:"required,email,max=254"`
}

func (i *signinInput) UnmarshalJSON(data []byte) error {
	type plain signinInput
	if err := json.Unmarshal(data, (*plain)(i)); err != nil {
		return err
	}

	trimSpaces(&i.Email)
	return nil
}

// @Summary Sign in
// @Tags Auth
// @Description Mails a sign-in code to a verified user
// @ModuleID signin
// @Accept  json
// @Produce  json
// @Param input body signinInput true "Sign in info"
// @Success 200 {object} messageResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 404 {object} ErrorStruct
// @Failure 429 {object} ErrorStruct
// @Router /auth/signin [post]
func (h *Handler) signin(c *gin.Context) {
	var inp signinInput
	if err := c.ShouldBindJSON(&inp); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	pending, err := h.services.Auth.Signin(c.Request.Context(), inp.Email)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.attachCookie(c, h.config.Cookie.VerificationName, pending.Token, pending.TTL)
	c.JSON(http.StatusOK, messageResponse{"Verify your email"})
}

// @Summary Resend verification code
// @Tags Auth
// @Description Replaces the pending code; requires the verification cookie
// @ModuleID resendVerificationToken
// @Produce  json
// @Success 200 {object} messageResponse
// @Failure 400 {object} ErrorStruct
// @Failure 429 {object} ErrorStruct
// @Router /auth/resend-verification-token [post]
func (h *Handler) resendVerificationToken(c *gin.Context) {
	token, err := readCookie(c, h.config.Cookie.VerificationName)
	if err != nil {
		_ = c.Error(service.ErrInvalidSession)
		return
	}

	if err := h.services.Auth.ResendCode(c.Request.Context(), token); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{"Verification code resent"})
}

type verifyEmailInput struct {
	Code string `json:"code" binding:"required,otp"`
}

func (i *verifyEmailInput) UnmarshalJSON(data []byte) error {
	type plain verifyEmailInput
	if err := json.Unmarshal(data, (*plain)(i)); err != nil {
		return err
	}

	trimSpaces(&i.Code)
	return nil
}

// @Summary Verify email
// @Tags Auth
// @Description Exchanges the mailed code for a session cookie
// @ModuleID verifyEmail
// @Accept  json
// @Produce  json
// @Param input body verifyEmailInput true "Code"
// @Success 200 {object} messageResponse
// @Failure 400 {object} ErrorStruct
// @Router /auth/verify-email [post]
func (h *Handler) verifyEmail(c *gin.Context) {
	var inp verifyEmailInput
	if err := c.ShouldBindJSON(&inp); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	token, err := readCookie(c, h.config.Cookie.VerificationName)
	if err != nil {
		_ = c.Error(service.ErrInvalidSession)
		return
	}

	session, err := h.services.Auth.VerifyCode(c.Request.Context(), token, inp.Code)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.clearCookies(c, h.config.Cookie.VerificationName)
	h.attachCookie(c, h.config.Cookie.AuthName, session.Token, session.TTL)
	c.JSON(http.StatusOK, messageResponse{"Email verified successfully"})
}

// @Summary Sign out
// @Tags Auth
// @Description Clears the session and verification cookies
// @ModuleID signout
// @Produce  json
// @Success 200 {object} messageResponse
// @Failure 401 {object} ErrorStruct
// @Security CookieAuth
// @Router /auth/signout [post]
func (h *Handler) signout(c *gin.Context) {
	h.clearCookies(c, h.config.Cookie.AuthName, h.config.Cookie.VerificationName)
	c.JSON(http.StatusOK, messageResponse{"Logout successfully"})
}

// @Summary Google OAuth login
// @Tags Auth
// @Description Redirects to the Google consent screen
// @ModuleID googleLogin
// @Success 302
// @Router /auth/google [get]
func (h *Handler) googleLogin(c *gin.Context) {
	redirect, err := h.services.Auth.OAuthLoginURL(c.Request.Context())
	if err != nil {
		logger.Error("start oauth login failed", zap.Error(err))
		h.redirectToFrontend(c, "/signin", oauthFailedError)
		return
	}

	h.attachCookie(c, h.config.Cookie.OAuthStateName, redirect.State, h.config.Google.StateTTL)
	c.Redirect(http.StatusFound, redirect.URL)
}

// @Summary Google OAuth callback
// @Tags Auth
// @Description Signs the user in and redirects to the frontend
// @ModuleID googleCallback
// @Param code query string true "Authorization code"
// @Param state query string true "State parameter"
// @Success 302
// @Router /auth/google/callback [get]
func (h *Handler) googleCallback(c *gin.Context) {
	expectedState, _ := readCookie(c, h.config.Cookie.OAuthStateName)
	h.clearCookies(c, h.config.Cookie.OAuthStateName)

	session, err := h.services.Auth.OAuthCallback(c.Request.Context(), service.OAuthCallbackInput{
		Code:          c.Query("code"),
		State:         c.Query("state"),
		ExpectedState: expectedState,
	})
	if err != nil {
		if !errors.Is(err, service.ErrOAuthExchangeFailed) {
			logger.Error("oauth callback failed", zap.Error(err))
		}
		h.redirectToFrontend(c, "/signin", oauthFailedError)
		return
	}

	h.attachCookie(c, h.config.Cookie.AuthName, session.Token, session.TTL)
	h.redirectToFrontend(c, "", "")
}

func (h *Handler) redirectToFrontend(c *gin.Context, path string, errorCode string) {
	target := strings.TrimRight(h.config.FrontendURL, "/") + path
	if errorCode != "" {
		target += "?" + url.Values{"error": {errorCode}}.Encode()
	}

	c.Redirect(http.StatusFound, target)
}
