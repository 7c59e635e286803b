package httpapi

import "context"

type subjectKey struct{}

type requestInfoKey struct{}

// requestInfo is installed by the request logger so that values resolved deeper in
// the middleware chain show up in the access log.
type requestInfo struct {
	subject string
}

func WithSubject(ctx context.Context, subjectID string) context.Context {
	if info, ok := ctx.Value(requestInfoKey{}).(*requestInfo); ok {
		info.subject = subjectID
	}
	return context.WithValue(ctx, subjectKey{}, subjectID)
}

func SubjectFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(subjectKey{}).(string)
	return v, ok && v != ""
}
