package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
	"github.com/quizdeck/quizdeck/internal/quizdeck/service"
	"github.com/quizdeck/quizdeck/internal/quizdeck/store"
	"github.com/quizdeck/quizdeck/pkg/httpx"
	"github.com/quizdeck/quizdeck/pkg/jwtx"
	"github.com/quizdeck/quizdeck/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthService     *service.AuthService
	InviteService   *service.InviteService
	AccountService  *service.AccountService
	CategoryService *service.CategoryService
	QuestionService *service.QuestionService
	QuizService     *service.QuizService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAdmin()
	r.registerQuiz()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authenticated wraps h with token verification, the role gate, and a
// per-user rate limit. Every /admin handler and the authenticated /auth
// handlers go through here so the role policy has a single wiring point.
func (r *Router) authenticated(h http.Handler, limit httpx.RateLimitConfig, roles ...domain.Role) http.Handler {
	if len(roles) == 0 {
		roles = domain.SelfRegisterRoles
	}
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyRole(domain.RoleNames(roles)...),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerAuth() {
	// POST /auth/token - strict limit keyed by IP plus the username field
	// to slow credential stuffing.
	tokenHandler := &TokenHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /auth/token",
		httpx.Chain(tokenHandler,
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)

	registerHandler := &RegisterHandler{
		AuthService:   r.AuthService,
		InviteService: r.InviteService,
	}
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(registerHandler.HandleDirect),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/register/invited",
		httpx.Chain(http.HandlerFunc(registerHandler.HandleInvited),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/invite - authenticated; the service re-checks the
	// inviter's role against the stored account.
	inviteHandler := &InviteHandler{
		AuthService:   r.AuthService,
		InviteService: r.InviteService,
	}
	r.Mux.Handle("POST /auth/invite",
		r.authenticated(inviteHandler, httpx.ModerateLimit, domain.InviterRoles...),
	)

	passwordHandler := &PasswordHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /auth/password-reset-request",
		httpx.Chain(http.HandlerFunc(passwordHandler.HandleResetRequest),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/password-reset",
		httpx.Chain(http.HandlerFunc(passwordHandler.HandleReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	verifyHandler := &VerifyEmailHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /auth/verify-email",
		httpx.Chain(verifyHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	meHandler := &MeHandler{AuthService: r.AuthService}
	r.Mux.Handle("GET /auth/me",
		r.authenticated(meHandler, httpx.LenientLimit),
	)
}

func (r *Router) registerAdmin() {
	categories := &CategoriesHandler{CategoryService: r.CategoryService}
	r.Mux.Handle("POST /admin/categories",
		r.authenticated(http.HandlerFunc(categories.HandleCreate), httpx.ModerateLimit))
	r.Mux.Handle("GET /admin/categories",
		r.authenticated(http.HandlerFunc(categories.HandleList), httpx.LenientLimit))
	r.Mux.Handle("GET /admin/categories/{id}",
		r.authenticated(http.HandlerFunc(categories.HandleGet), httpx.LenientLimit))
	r.Mux.Handle("PUT /admin/categories/{id}",
		r.authenticated(http.HandlerFunc(categories.HandleUpdate), httpx.ModerateLimit))
	r.Mux.Handle("DELETE /admin/categories/{id}",
		r.authenticated(http.HandlerFunc(categories.HandleDelete), httpx.ModerateLimit))

	questions := &QuestionsHandler{QuestionService: r.QuestionService}
	r.Mux.Handle("POST /admin/questions",
		r.authenticated(http.HandlerFunc(questions.HandleCreate), httpx.ModerateLimit))
	r.Mux.Handle("GET /admin/questions",
		r.authenticated(http.HandlerFunc(questions.HandleList), httpx.LenientLimit))
	r.Mux.Handle("GET /admin/questions/{id}",
		r.authenticated(http.HandlerFunc(questions.HandleGet), httpx.LenientLimit))
	r.Mux.Handle("PUT /admin/questions/{id}",
		r.authenticated(http.HandlerFunc(questions.HandleUpdate), httpx.ModerateLimit))
	r.Mux.Handle("DELETE /admin/questions/{id}",
		r.authenticated(http.HandlerFunc(questions.HandleDelete), httpx.ModerateLimit))

	users := &UsersHandler{AccountService: r.AccountService}
	r.Mux.Handle("POST /admin/users",
		r.authenticated(http.HandlerFunc(users.HandleCreate), httpx.ModerateLimit))
	r.Mux.Handle("GET /admin/users",
		r.authenticated(http.HandlerFunc(users.HandleList), httpx.LenientLimit))
}

func (r *Router) registerQuiz() {
	quiz := &QuizHandler{QuizService: r.QuizService}

	public := func(h http.Handler) http.Handler {
		return httpx.Chain(h, httpx.RateLimitByIP(httpx.PublicLimit))
	}

	r.Mux.Handle("GET /quiz/categories", public(http.HandlerFunc(quiz.HandleCategories)))
	r.Mux.Handle("GET /quiz/questions/{categoryID}", public(http.HandlerFunc(quiz.HandleQuestions)))
	r.Mux.Handle("GET /quiz/random/{categoryID}", public(http.HandlerFunc(quiz.HandleRandom)))
	r.Mux.Handle("POST /quiz/submit/{categoryID}", public(http.HandlerFunc(quiz.HandleSubmit)))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
