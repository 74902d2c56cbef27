package typeconv

// Validator is the uniform leaf rule: it validates v and returns the value to
// store, which may be a coerced form of v. Validation failures are Issues.
type Validator interface {
	Convert(v any) (any, error)
}

// Func adapts a plain function to Validator. Errors that are not Issues are
// reported as rejected values.
type Func func(v any) (any, error)

func (f Func) Convert(v any) (any, error) {
	out, err := f(v)
	if err != nil {
		return nil, asValidationError(v, err)
	}
	return out, nil
}

func (f Func) String() string { return "Func" }

// asValidationError turns a foreign error from a rule into Issues. Issues and
// hook errors pass through untouched.
func asValidationError(v any, err error) error {
	switch err.(type) {
	case Issues, *HookError:
		return err
	}
	return fail(CodeRejected, err, "value", v, "reason", Text(err.Error()))
}

// Option configures the hooks shared by every leaf validator, and the
// OnlyTypes specific settings.
type Option func(*leafConfig)

type leafConfig struct {
	pre       func(any) (any, error)
	post      func(any) (any, error)
	allowNone bool
	strict    bool
	disallow  []*Type
}

// WithPreprocess runs f on the input before validation.
func WithPreprocess(f func(any) (any, error)) Option {
	return func(c *leafConfig) { c.pre = f }
}

// WithPostprocess runs f on the validated value.
func WithPostprocess(f func(any) (any, error)) Option {
	return func(c *leafConfig) { c.post = f }
}

// AllowNone makes nil an acceptable value, returned without running hooks or
// the rule.
func AllowNone() Option {
	return func(c *leafConfig) { c.allowNone = true }
}

// Strict disables coercion in OnlyTypes: only instances are accepted.
func Strict() Option {
	return func(c *leafConfig) { c.strict = true }
}

// Disallow rejects instances of the given types in OnlyTypes, before the
// instance check.
func Disallow(types ...*Type) Option {
	return func(c *leafConfig) { c.disallow = append(c.disallow, types...) }
}

func newLeafConfig(opts []Option) leafConfig {
	var c leafConfig
	for _, o := range opts {
		o(&c)
	}
	return c
}

// helpValidate runs the common leaf contract around rule:
// none check, then postprocess(rule(preprocess(v))).
func (c *leafConfig) helpValidate(v any, rule func(any) (any, error)) (any, error) {
	if v == nil {
		if !c.allowNone {
			return nil, fail(CodeNullNotAllowed, ErrNullNotAllowed)
		}
		return nil, nil
	}
	if c.pre != nil {
		pv, err := c.pre(v)
		if err != nil {
			return nil, hookError("preprocess", err)
		}
		v = pv
	}
	out, err := rule(v)
	if err != nil {
		return nil, err
	}
	if c.post != nil {
		pv, err := c.post(out)
		if err != nil {
			return nil, hookError("postprocess", err)
		}
		out = pv
	}
	return out, nil
}

// hookError keeps Issues raised deliberately by a hook as they are and wraps
// every other hook error in a HookError.
func hookError(stage string, err error) error {
	if iss, ok := err.(Issues); ok {
		return iss
	}
	return &HookError{Stage: stage, Err: err}
}
