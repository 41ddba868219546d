package annotation

import (
	"context"
	"fmt"
	"strings"

	schema "github.com/speakeasy-api/schemaannotate"
)

const (
	msgResolutionHeader = "Annotation processing encountered errors during resolution in \"%s\" handler. \n"
	msgValidationHeader = "Annotation processing encountered errors during validation in \"%s\" handler. \n"
	msgResolutionFailed = "Annotation processing failed when processing resolution by at least one of the handlers"
)

// session holds the state of one Process call.
type session struct {
	ctx      context.Context
	handlers []Handler
	opts     Options
	log      Logger

	result  *Result
	errText strings.Builder
}

func newSession(ctx context.Context, handlers []Handler, opts Options) *session {
	return &session{
		ctx:      ctx,
		handlers: handlers,
		opts:     opts,
		log:      loggerFor(opts),
	}
}

func (s *session) run(root schema.Schema) (*Result, error) {
	s.result = &Result{Schema: root}
	s.log.Debugf("processing %s with %d handlers", schemaSummary(root, s.opts.LogMaxFields), len(s.handlers))

	resolveFailed := false
	for _, h := range s.handlers {
		failed, err := s.resolve(h)
		if err != nil {
			return nil, err
		}
		resolveFailed = resolveFailed || failed
	}

	if resolveFailed {
		s.errText.WriteString(msgResolutionFailed)
		s.result.ErrorText = s.errText.String()
		s.log.Warnf("annotation resolution failed with %d messages", len(s.result.Messages))
		return s.result, nil
	}
	s.result.ResolutionSuccess = true

	validateFailed := false
	if !s.opts.SkipValidation {
		for _, h := range s.handlers {
			failed, err := s.validate(h)
			if err != nil {
				return nil, err
			}
			validateFailed = validateFailed || failed
		}
	}
	s.result.ValidationSuccess = !validateFailed
	s.result.ErrorText = s.errText.String()
	return s.result, nil
}

// resolve runs the override pass of h over the current schema. On success
// the current schema is replaced by the constructed copy.
func (s *session) resolve(h Handler) (failed bool, err error) {
	ns := h.Namespace()
	log := s.log.With(map[string]any{"namespace": ns})
	v := newOverrideVisitor(h, s.opts, log)

	if err := s.traverse(v, ns); err != nil {
		return false, fmt.Errorf("annotation processing failed when resolving annotations using the handler for namespace %s: %w", ns, err)
	}

	if v.messages.failed() {
		fmt.Fprintf(&s.errText, msgResolutionHeader, ns)
		s.errText.WriteString(v.messages.format())
		s.result.Messages = append(s.result.Messages, v.messages.msgs...)
		log.Warnf("resolution reported %d messages", len(v.messages.msgs))
		return true, nil
	}

	s.result.Schema = v.constructed
	log.Debugf("resolved into %s", schemaSummary(v.constructed, s.opts.LogMaxFields))
	return false, nil
}

func (s *session) validate(h Handler) (failed bool, err error) {
	ns := h.Namespace()
	v := newValidationVisitor(h)
	if err := s.traverse(v, ns); err != nil {
		return false, fmt.Errorf("annotation processing failed when validating annotations using the handler for namespace %s: %w", ns, err)
	}
	if !v.messages.failed() {
		return false, nil
	}
	fmt.Fprintf(&s.errText, msgValidationHeader, ns)
	s.errText.WriteString(v.messages.format())
	s.result.Messages = append(s.result.Messages, v.messages.msgs...)
	s.log.Warnf("validation in %q reported %d messages", ns, len(v.messages.msgs))
	return true, nil
}

// traverse walks the current schema with v. Panics raised by handlers or
// by impossible engine states surface as contract violations.
func (s *session) traverse(v Visitor, ns string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = contractViolation("panic in %q pass: %v", ns, r)
		}
	}()
	return NewTraverser(v).Traverse(s.ctx, s.result.Schema)
}
