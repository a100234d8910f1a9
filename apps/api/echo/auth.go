package echoapi

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core"
	"github.com/fastbreakhq/fastbreak/core/guardian"
)

const (
	contextTokenKey    = "guardianToken"
	contextGuardianKey = "guardian"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Email        string `json:"email,omitempty"`
	FullName     string `json:"fullName,omitempty"`
	IsAdmin      bool   `json:"is_admin,omitempty"` // -> ADMIN PORTAL
	IsCoach      bool   `json:"is_coach,omitempty"`
}

func newClaimsFunc(echo.Context) jwt.Claims { return new(Claims) }

func GetGuardianClaims(conf *core.Config, g guardian.Guardian, origIat ...int64) *Claims {
	now := time.Now()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = now.Unix()
	}

	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    conf.AppName,
			Subject:   g.ID,
			Audience:  jwt.ClaimStrings{"Fastbreak"},
			ExpiresAt: jwt.NewNumericDate(now.Add(conf.Server.JWTExpirationDelta)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OrigIssuedAt: oriat,
		Email:        g.Email,
		FullName:     g.FullName,
		IsAdmin:      g.IsAdmin,
		IsCoach:      g.IsCoach,
	}
}

func authenticate(ctx echo.Context, email, pwd string, conf *core.Config, svc guardian.Service) (*Claims, error) {
	g, err := svc.GetByEmail(ctx.Request().Context(), email)
	if err != nil {
		if errors.Cause(err) == guardian.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding guardian by email")
	}
	if err = g.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	g, err = svc.SetLastLogin(ctx.Request().Context(), g)
	if err != nil {
		return nil, errors.Wrap(err, "setting lastLogin")
	}
	return GetGuardianClaims(conf, g), nil
}

// GenerateToken generates a signed JWT token string representing the claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(conf.SecretKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextGuardian(ctx echo.Context, svc guardian.Service, clms ...Claims) (guardian.Guardian, error) {
	if g, ok := ctx.Get(contextGuardianKey).(guardian.Guardian); ok {
		return g, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return guardian.Guardian{}, errors.Wrap(err, "getting context claims")
		}
	}

	g, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return guardian.Guardian{}, errors.Wrap(err, "finding guardian by ID")
	}
	ctx.Set(contextGuardianKey, g)
	return g, nil
}

func refreshToken(ctx echo.Context, conf *core.Config, svc guardian.Service) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	g, err := getContextGuardian(ctx, svc, claims)
	if err != nil {
		return "", errors.Wrap(err, "getting context guardian")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	newClaims := GetGuardianClaims(conf, g, claims.OrigIssuedAt)
	token, err := GenerateToken(conf, newClaims)
	return token, errors.Wrap(err, "generating token")
}
