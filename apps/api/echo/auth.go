package echoapi

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/access"
	"github.com/maktabuz/maktab/core/user"
)

var (
	jwtContextKey   = "userToken"
	contextUserKey  = "user"
	contextActorKey = "actor"
)

// Claims represents the authorization claims transmitted via a JWT.
// ProfileID is the caller's role profile (student/teacher/guardian id),
// resolved once at login. A parent's linked children are resolved
// per-request, not stored in the token.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64       `json:"oriat,omitempty"`
	Username     string      `json:"username,omitempty"`
	Email        string      `json:"email,omitempty"`
	Role         access.Role `json:"role,omitempty"`
	ProfileID    string      `json:"profile_id,omitempty"`
}

type jwtAuth struct {
	conf   *core.Config
	config middleware.JWTConfig
}

func newJWTAuth(conf *core.Config) *jwtAuth {
	return &jwtAuth{
		conf: conf,
		config: middleware.JWTConfig{
			SigningKey:    conf.SecretKey,
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    jwtContextKey,
			Claims:        new(Claims),
		},
	}
}

func (a *jwtAuth) claims(usr user.User, profileID string, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    a.conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(a.conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Username:     usr.Username,
		Email:        usr.Email,
		Role:         usr.Role,
		ProfileID:    profileID,
	}
}

// GenerateToken generates a signed JWT token string representing the claims.
func (a *jwtAuth) GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(a.config.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(a.config.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

// profileID resolves the role profile owned by the user, empty for admins
// and for accounts whose profile has not been created yet.
func profileID(ctx context.Context, usr user.User, deps *ServerDeps) (string, error) {
	switch usr.Role {
	case access.RoleStudent:
		std, err := deps.StudentSvc.GetByUserID(ctx, usr.ID)
		if err != nil {
			if core.IsNotFound(err) {
				return "", nil
			}
			return "", errors.Wrap(err, "finding student profile")
		}
		return std.ID, nil
	case access.RoleTeacher:
		tch, err := deps.TeacherSvc.GetByUserID(ctx, usr.ID)
		if err != nil {
			if core.IsNotFound(err) {
				return "", nil
			}
			return "", errors.Wrap(err, "finding teacher profile")
		}
		return tch.ID, nil
	case access.RoleParent:
		grd, err := deps.GuardianSvc.GetByUserID(ctx, usr.ID)
		if err != nil {
			if core.IsNotFound(err) {
				return "", nil
			}
			return "", errors.Wrap(err, "finding guardian profile")
		}
		return grd.ID, nil
	}
	return "", nil
}

func authenticate(ctx context.Context, uname, pwd string, auth *jwtAuth, deps *ServerDeps) (*Claims, error) {
	usr, err := deps.UserSvc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding user by username or email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	if !usr.Active() {
		return nil, errAccountDeactivated
	}
	pid, err := profileID(ctx, usr, deps)
	if err != nil {
		return nil, err
	}
	usr, err = deps.UserSvc.SetLastLogin(ctx, usr)
	if err != nil {
		return nil, errors.Wrap(err, "setting lastLogin")
	}
	return auth.claims(usr, pid), nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(jwtContextKey).(*jwt.Token); ok {
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
	// deactivation takes effect immediately, not at token expiry
	if !usr.Active() {
		return user.User{}, errAccountDeactivated
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

// getContextActor builds the policy actor from the token claims. The account
// is re-resolved on every request so deactivation locks it out right away; for
// parents the linked-children set is resolved fresh too, so link changes take
// effect without re-login.
func getContextActor(ctx echo.Context, deps *ServerDeps) (access.Actor, error) {
	if actor, ok := ctx.Get(contextActorKey).(access.Actor); ok {
		return actor, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return access.Actor{}, errors.Wrap(err, "getting context claims")
	}
	usr, err := getContextUser(ctx, deps.UserSvc, claims)
	if err != nil {
		return access.Actor{}, errors.Wrap(err, "getting context user")
	}

	actor := access.Actor{
		UserID:    usr.ID,
		Role:      usr.Role,
		ProfileID: claims.ProfileID,
	}
	if actor.Role == access.RoleParent && actor.ProfileID != "" {
		childIDs, err := deps.GuardianSvc.StudentIDs(ctx.Request().Context(), actor.ProfileID)
		if err != nil {
			return access.Actor{}, errors.Wrap(err, "resolving linked students")
		}
		actor.ChildIDs = childIDs
	}
	ctx.Set(contextActorKey, actor)
	return actor, nil
}

func refreshToken(ctx echo.Context, auth *jwtAuth, deps *ServerDeps) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	usr, err := getContextUser(ctx, deps.UserSvc, claims)
	if err != nil {
		return "", errors.Wrap(err, "getting context user")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(auth.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	pid, err := profileID(ctx.Request().Context(), usr, deps)
	if err != nil {
		return "", err
	}
	newClaims := auth.claims(usr, pid, claims.OrigIssuedAt)
	token, err := auth.GenerateToken(newClaims)
	return token, errors.Wrap(err, "generating token")
}
