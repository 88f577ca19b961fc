package login

import "context"

// StaticCodeIssuer returns a fixed code. The host application replaces
// this with its platform bridge; the demo binary and tests use it as-is.
type StaticCodeIssuer struct {
	Code string
	Err  error
}

func (s *StaticCodeIssuer) IssueCode(ctx context.Context) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Code, nil
}

// StaticConsent answers every consent prompt the same way.
type StaticConsent struct {
	Result  ConsentResult
	Granted bool
	Err     error
}

func (s *StaticConsent) RequestProfileConsent(ctx context.Context) (ConsentResult, bool, error) {
	if s.Err != nil {
		return ConsentResult{}, false, s.Err
	}
	return s.Result, s.Granted, nil
}
