package middleware

import (
	"net/http"

	"github.com/medtrack/sessiongate"
	"github.com/medtrack/sessiongate/internal/routes"
)

// Gate returns the edge middleware enforcing locale prefixing and the
// authentication access policy. The decision table is strict:
//
//	session present, auth-only route  -> redirect home (dashboard or onboarding)
//	session absent,  protected route  -> redirect to login?redirect=<original>
//	anything else                     -> pass through unchanged
//
// Requests matching the exclusion list (API, assets, file paths) bypass
// the gate entirely, including locale resolution.
func Gate(engine *sessiongate.Engine) func(http.Handler) http.Handler {
	cfg := engine.GateConfig()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if routes.Excluded(path, cfg.ExcludedPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			locale, logical, ok := routes.SplitLocale(path, cfg.Locales)
			if !ok {
				// Terminal for this cycle: policy is evaluated on the
				// locale-prefixed request that follows the redirect.
				target := routes.LocalePrefix(cfg.DefaultLocale, path)
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				engine.GateMetricInc(sessiongate.MetricGateLocaleRedirect)
				http.Redirect(w, r, target, http.StatusTemporaryRedirect)
				return
			}

			session := engine.Session(r)
			class := routes.Classify(logical, cfg.AuthOnlyPaths, cfg.ProtectedPaths)

			switch {
			case session != nil && class == routes.AuthOnly:
				home := cfg.DashboardPath
				if !session.OnboardingCompleted {
					home = cfg.OnboardingPath
				}
				engine.GateMetricInc(sessiongate.MetricGateHomeRedirect)
				http.Redirect(w, r, routes.LocalePrefix(locale, home), http.StatusTemporaryRedirect)

			case session == nil && class == routes.Protected:
				destination := routes.LocalePrefix(locale, logical)
				engine.GateMetricInc(sessiongate.MetricGateLoginRedirect)
				http.Redirect(w, r, routes.LoginTarget(locale, cfg.LoginPath, destination), http.StatusTemporaryRedirect)

			default:
				engine.GateMetricInc(sessiongate.MetricGatePass)
				next.ServeHTTP(w, r)
			}
		})
	}
}
