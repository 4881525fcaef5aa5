package internaldefs

import (
	"github.com/medtrack/sessiongate"
)

// CounterDef binds one engine counter to its exported name and help text.
type CounterDef struct {
	ID   sessiongate.MetricID
	Name string
	Help string
}

// CounterDefs lists every engine counter in export order. Both exporters
// iterate this slice so the two surfaces never drift apart.
var CounterDefs = []CounterDef{
	{ID: sessiongate.MetricVerifyOK, Name: "sessiongate_verify_ok_total", Help: "Successful session verifications."},
	{ID: sessiongate.MetricVerifyMissing, Name: "sessiongate_verify_missing_total", Help: "Requests carrying no session cookie."},
	{ID: sessiongate.MetricVerifyExpired, Name: "sessiongate_verify_expired_total", Help: "Tokens rejected for expiry."},
	{ID: sessiongate.MetricVerifyBadSignature, Name: "sessiongate_verify_bad_signature_total", Help: "Tokens rejected for signature mismatch."},
	{ID: sessiongate.MetricVerifyMalformed, Name: "sessiongate_verify_malformed_total", Help: "Structurally invalid tokens."},
	{ID: sessiongate.MetricVerifyRevoked, Name: "sessiongate_verify_revoked_total", Help: "Tokens rejected by the revocation denylist."},
	{ID: sessiongate.MetricVerifyBackendError, Name: "sessiongate_verify_backend_error_total", Help: "Tokens rejected because the denylist was unreachable."},
	{ID: sessiongate.MetricSessionIssued, Name: "sessiongate_session_issued_total", Help: "Session cookies issued."},
	{ID: sessiongate.MetricSessionRefreshed, Name: "sessiongate_session_refreshed_total", Help: "Sliding session re-issues."},
	{ID: sessiongate.MetricSessionCleared, Name: "sessiongate_session_cleared_total", Help: "Session cookies cleared."},
	{ID: sessiongate.MetricLoginSuccess, Name: "sessiongate_login_success_total", Help: "Successful password sign-ins."},
	{ID: sessiongate.MetricLoginFailure, Name: "sessiongate_login_failure_total", Help: "Rejected password sign-ins."},
	{ID: sessiongate.MetricLoginThrottled, Name: "sessiongate_login_throttled_total", Help: "Sign-ins refused by the attempt budget."},
	{ID: sessiongate.MetricRegisterSuccess, Name: "sessiongate_register_success_total", Help: "Accounts created."},
	{ID: sessiongate.MetricRegisterDuplicate, Name: "sessiongate_register_duplicate_total", Help: "Registrations rejected for an existing email."},
	{ID: sessiongate.MetricGateLocaleRedirect, Name: "sessiongate_gate_locale_redirect_total", Help: "Locale-prefix redirects issued by the gate."},
	{ID: sessiongate.MetricGateLoginRedirect, Name: "sessiongate_gate_login_redirect_total", Help: "Unauthenticated visitors redirected to login."},
	{ID: sessiongate.MetricGateHomeRedirect, Name: "sessiongate_gate_home_redirect_total", Help: "Authenticated visitors redirected off auth-only routes."},
	{ID: sessiongate.MetricGatePass, Name: "sessiongate_gate_pass_total", Help: "Requests forwarded unmodified by the gate."},
}
