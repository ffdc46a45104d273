// Package handler composes extractors and a plain function into a single
// Handler value, as a family of generic adapters keyed on arity.
package handler

import (
	"github.com/wsforge/wsforge/extractor"
	"github.com/wsforge/wsforge/message"
	"github.com/wsforge/wsforge/response"
)

// Handler is the uniform shape every route dispatches through: run the
// extractors, invoke the underlying function, convert its result.
type Handler interface {
	Call(ctx *extractor.Context) (*message.Message, error)
}

type handlerFunc func(ctx *extractor.Context) (*message.Message, error)

func (f handlerFunc) Call(ctx *extractor.Context) (*message.Message, error) {
	return f(ctx)
}

func convertResult[R any](v R, err error) (*message.Message, error) {
	if err != nil {
		return nil, err
	}
	return response.Convert(v)
}

// H0 adapts a zero-extractor function.
func H0[R any](f func() (R, error)) Handler {
	return handlerFunc(func(_ *extractor.Context) (*message.Message, error) {
		return convertResult(f())
	})
}

// H1 adapts a one-extractor function.
func H1[T1, R any](e1 extractor.Func[T1], f func(T1) (R, error)) Handler {
	return handlerFunc(func(ctx *extractor.Context) (*message.Message, error) {
		v1, err := e1(ctx)
		if err != nil {
			return nil, err
		}
		return convertResult(f(v1))
	})
}

// H2 adapts a two-extractor function.
func H2[T1, T2, R any](e1 extractor.Func[T1], e2 extractor.Func[T2], f func(T1, T2) (R, error)) Handler {
	return handlerFunc(func(ctx *extractor.Context) (*message.Message, error) {
		v1, err := e1(ctx)
		if err != nil {
			return nil, err
		}
		v2, err := e2(ctx)
		if err != nil {
			return nil, err
		}
		return convertResult(f(v1, v2))
	})
}

// H3 adapts a three-extractor function.
func H3[T1, T2, T3, R any](e1 extractor.Func[T1], e2 extractor.Func[T2], e3 extractor.Func[T3], f func(T1, T2, T3) (R, error)) Handler {
	return handlerFunc(func(ctx *extractor.Context) (*message.Message, error) {
		v1, err := e1(ctx)
		if err != nil {
			return nil, err
		}
		v2, err := e2(ctx)
		if err != nil {
			return nil, err
		}
		v3, err := e3(ctx)
		if err != nil {
			return nil, err
		}
		return convertResult(f(v1, v2, v3))
	})
}

// H4 adapts a four-extractor function.
func H4[T1, T2, T3, T4, R any](e1 extractor.Func[T1], e2 extractor.Func[T2], e3 extractor.Func[T3], e4 extractor.Func[T4], f func(T1, T2, T3, T4) (R, error)) Handler {
	return handlerFunc(func(ctx *extractor.Context) (*message.Message, error) {
		v1, err := e1(ctx)
		if err != nil {
			return nil, err
		}
		v2, err := e2(ctx)
		if err != nil {
			return nil, err
		}
		v3, err := e3(ctx)
		if err != nil {
			return nil, err
		}
		v4, err := e4(ctx)
		if err != nil {
			return nil, err
		}
		return convertResult(f(v1, v2, v3, v4))
	})
}

// H5 adapts a five-extractor function.
func H5[T1, T2, T3, T4, T5, R any](e1 extractor.Func[T1], e2 extractor.Func[T2], e3 extractor.Func[T3], e4 extractor.Func[T4], e5 extractor.Func[T5], f func(T1, T2, T3, T4, T5) (R, error)) Handler {
	return handlerFunc(func(ctx *extractor.Context) (*message.Message, error) {
		v1, err := e1(ctx)
		if err != nil {
			return nil, err
		}
		v2, err := e2(ctx)
		if err != nil {
			return nil, err
		}
		v3, err := e3(ctx)
		if err != nil {
			return nil, err
		}
		v4, err := e4(ctx)
		if err != nil {
			return nil, err
		}
		v5, err := e5(ctx)
		if err != nil {
			return nil, err
		}
		return convertResult(f(v1, v2, v3, v4, v5))
	})
}

// H6 adapts a six-extractor function.
func H6[T1, T2, T3, T4, T5, T6, R any](e1 extractor.Func[T1], e2 extractor.Func[T2], e3 extractor.Func[T3], e4 extractor.Func[T4], e5 extractor.Func[T5], e6 extractor.Func[T6], f func(T1, T2, T3, T4, T5, T6) (R, error)) Handler {
	return handlerFunc(func(ctx *extractor.Context) (*message.Message, error) {
		v1, err := e1(ctx)
		if err != nil {
			return nil, err
		}
		v2, err := e2(ctx)
		if err != nil {
			return nil, err
		}
		v3, err := e3(ctx)
		if err != nil {
			return nil, err
		}
		v4, err := e4(ctx)
		if err != nil {
			return nil, err
		}
		v5, err := e5(ctx)
		if err != nil {
			return nil, err
		}
		v6, err := e6(ctx)
		if err != nil {
			return nil, err
		}
		return convertResult(f(v1, v2, v3, v4, v5, v6))
	})
}

// H7 adapts a seven-extractor function.
func H7[T1, T2, T3, T4, T5, T6, T7, R any](e1 extractor.Func[T1], e2 extractor.Func[T2], e3 extractor.Func[T3], e4 extractor.Func[T4], e5 extractor.Func[T5], e6 extractor.Func[T6], e7 extractor.Func[T7], f func(T1, T2, T3, T4, T5, T6, T7) (R, error)) Handler {
	return handlerFunc(func(ctx *extractor.Context) (*message.Message, error) {
		v1, err := e1(ctx)
		if err != nil {
			return nil, err
		}
		v2, err := e2(ctx)
		if err != nil {
			return nil, err
		}
		v3, err := e3(ctx)
		if err != nil {
			return nil, err
		}
		v4, err := e4(ctx)
		if err != nil {
			return nil, err
		}
		v5, err := e5(ctx)
		if err != nil {
			return nil, err
		}
		v6, err := e6(ctx)
		if err != nil {
			return nil, err
		}
		v7, err := e7(ctx)
		if err != nil {
			return nil, err
		}
		return convertResult(f(v1, v2, v3, v4, v5, v6, v7))
	})
}

// H8 adapts an eight-extractor function, the maximum arity supported.
func H8[T1, T2, T3, T4, T5, T6, T7, T8, R any](e1 extractor.Func[T1], e2 extractor.Func[T2], e3 extractor.Func[T3], e4 extractor.Func[T4], e5 extractor.Func[T5], e6 extractor.Func[T6], e7 extractor.Func[T7], e8 extractor.Func[T8], f func(T1, T2, T3, T4, T5, T6, T7, T8) (R, error)) Handler {
	return handlerFunc(func(ctx *extractor.Context) (*message.Message, error) {
		v1, err := e1(ctx)
		if err != nil {
			return nil, err
		}
		v2, err := e2(ctx)
		if err != nil {
			return nil, err
		}
		v3, err := e3(ctx)
		if err != nil {
			return nil, err
		}
		v4, err := e4(ctx)
		if err != nil {
			return nil, err
		}
		v5, err := e5(ctx)
		if err != nil {
			return nil, err
		}
		v6, err := e6(ctx)
		if err != nil {
			return nil, err
		}
		v7, err := e7(ctx)
		if err != nil {
			return nil, err
		}
		v8, err := e8(ctx)
		if err != nil {
			return nil, err
		}
		return convertResult(f(v1, v2, v3, v4, v5, v6, v7, v8))
	})
}
