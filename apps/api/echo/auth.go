package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/elimuhub/elimu/core"
	"github.com/elimuhub/elimu/core/user"
)

var (
	// appJWTConfig is the default JWT auth middleware config.
	appJWTConfig = middleware.JWTConfig{
		SigningKey:    []byte(core.Conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
	contextUserKey  = "user"
	stateCookieName = "oauthstate"

	userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	IsAdmin bool   `json:"is_admin,omitempty"`
}

func GetUserClaims(usr user.User) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:    usr.Name,
		Email:   usr.Email,
		Role:    usr.Role,
		IsAdmin: usr.IsAdmin(),
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context, svc *user.Service, clms ...Claims) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return user.User{}, errors.Wrap(err, "getting context claims")
		}
	}

	usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

// oauthConfig builds the identity provider config; lazy so tests can tweak
// core.Conf first.
func oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     core.Conf.Auth.ClientID,
		ClientSecret: core.Conf.Auth.ClientSecret,
		RedirectURL:  core.Conf.Auth.RedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

type authApi struct {
	svc *user.Service
}

func registerAuthAPI(g *echo.Group, svc *user.Service) {
	api := authApi{svc: svc}

	ag := g.Group("/auth")
	ag.GET("/login", api.login)
	ag.GET("/callback", api.callback)
}

// login redirects the browser to the identity provider's consent page; the
// random state round-trips via a short-lived cookie.
func (api *authApi) login(ctx echo.Context) error {
	state := uuid.New().String()
	ctx.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Path:     "/",
	})
	return ctx.Redirect(http.StatusTemporaryRedirect, oauthConfig().AuthCodeURL(state))
}

// callback completes the OAuth2 code exchange, upserts the user profile and
// returns a signed session token.
func (api *authApi) callback(ctx echo.Context) error {
	cookie, err := ctx.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != ctx.QueryParam("state") {
		return errAuthenticationFailed
	}

	su, err := fetchProviderProfile(ctx.Request().Context(), ctx.QueryParam("code"))
	if err != nil {
		if errors.Cause(err) == errAuthenticationFailed {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "fetching provider profile")
	}
	if err = su.Validate(); err != nil {
		return err
	}

	usr, err := api.svc.Sync(ctx.Request().Context(), su)
	if err != nil {
		return errors.Wrap(err, "syncing user")
	}

	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return jsonData(ctx, http.StatusOK, LoginResponse{Token: token, User: usr})
}

func fetchProviderProfile(ctx context.Context, code string) (user.SyncUser, error) {
	if code == "" {
		return user.SyncUser{}, errAuthenticationFailed
	}

	conf := oauthConfig()
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return user.SyncUser{}, errAuthenticationFailed
	}

	res, err := conf.Client(ctx, token).Get(userInfoURL)
	if err != nil {
		return user.SyncUser{}, errors.Wrap(err, "requesting user info")
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		return user.SyncUser{}, errors.Errorf("requesting user info - status: %d", res.StatusCode)
	}

	var info struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err = json.NewDecoder(res.Body).Decode(&info); err != nil {
		return user.SyncUser{}, errors.Wrap(err, "decoding user info")
	}
	return user.SyncUser{
		UID:    info.ID,
		Email:  info.Email,
		Name:   info.Name,
		Avatar: info.Picture,
	}, nil
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}
