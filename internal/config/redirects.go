package config

// Routes are the named auth pages.
var Routes = struct {
	Login          string `json:"login"`
	SignUp         string `json:"signUp"`
	ForgotPassword string `json:"forgotPassword"`
	MagicLink      string `json:"magicLink"`
	CheckEmail     string `json:"checkEmail"`
	ConfirmExpired string `json:"confirmExpired"`
}{
	Login:          "/auth/login",
	SignUp:         "/auth/signup",
	ForgotPassword: "/auth/forgot-password",
	MagicLink:      "/auth/magic-link",
	CheckEmail:     "/auth/check-email",
	ConfirmExpired: "/auth/confirm-expired",
}

// Redirects are the targets page guards send users to, keyed by purpose.
var Redirects = struct {
	ToDashboard    string `json:"toDashboard"`
	ToSubscription string `json:"toSubscription"`
	ToBilling      string `json:"toBilling"`
	RequireAuth    string `json:"requireAuth"`
	AuthConfirm    string `json:"authConfirm"`
	CheckEmail     string `json:"checkEmail"`
	Callback       string `json:"callback"`
	ToProfile      string `json:"toProfile"`
	RequireSub     string `json:"requireSub"`
	ToAddSub       string `json:"toAddSub"`
}{
	ToDashboard:    "/dashboard/tasks",
	ToSubscription: "/dashboard/settings/subscription",
	ToBilling:      "/dashboard/settings/billing",
	RequireAuth:    "/auth/auth-required",
	AuthConfirm:    "/auth/auth-confirm",
	CheckEmail:     "/auth/check-email",
	Callback:       "/api/auth-callback",
	ToProfile:      "/dashboard/settings/profile",
	RequireSub:     "/dashboard/settings/subscription-required",
	ToAddSub:       "/dashboard/settings/add-subscription",
}
