package api

import (
	"net/http"
	"strconv"

	"github.com/platinummonkey/poolguide/pkg/audit"
	"github.com/platinummonkey/poolguide/pkg/contextkeys"
	"github.com/platinummonkey/poolguide/pkg/middleware"
	"github.com/platinummonkey/poolguide/pkg/observability"
)

// auditRecorder attaches request details to audit events before handing them to the sink
type auditRecorder struct {
	sink       audit.Logger
	trustProxy bool
}

func newAuditRecorder(sink audit.Logger, trustProxy bool) *auditRecorder {
	if sink == nil {
		sink = audit.NopLogger{}
	}
	return &auditRecorder{sink: sink, trustProxy: trustProxy}
}

// record fills the actor from the auth context unless already set. Sink errors are logged only.
func (a *auditRecorder) record(r *http.Request, e *audit.Event) {
	e.IPAddress = middleware.ClientIP(r, a.trustProxy)
	e.UserAgent = r.UserAgent()
	e.RequestID = contextkeys.GetRequestID(r.Context())
	e.Method = r.Method
	e.Path = r.URL.Path

	if e.UserID == nil {
		if authCtx := middleware.GetAuthContext(r); authCtx != nil && authCtx.User != nil {
			e.WithActor(authCtx.User.ID, authCtx.User.Username)
		}
	}

	if err := a.sink.Log(r.Context(), e); err != nil {
		observability.FromContext(r.Context()).
			WithError(err).
			WithField("event_type", string(e.Type)).
			Warn("Failed to record audit event")
	}
}

func resourceID(id int64) string {
	return strconv.FormatInt(id, 10)
}
