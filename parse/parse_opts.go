package parse

// ParseOption configures a call to Parse.
type ParseOption func(*parseOpts)

type parseOpts struct {
	maxDepth int
	workers  int
}

func defaultOpts() parseOpts {
	return parseOpts{maxDepth: 100, workers: 1}
}

// MaxDepth bounds block nesting.  Documents deeper than n fail with
// ErrTooDeep.  The default is 100.
func MaxDepth(n int) ParseOption {
	return func(o *parseOpts) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// InlineWorkers sets how many goroutines run the inline pass.  The
// default of 1 keeps everything on the calling goroutine.  Results are
// identical for any worker count.
func InlineWorkers(n int) ParseOption {
	return func(o *parseOpts) {
		if n > 0 {
			o.workers = n
		}
	}
}
