package async

import (
	"strings"
	"sync"
)

// Errors collects the failures of a fan-out.
type Errors struct {
	E []error
}

var _ error = (*Errors)(nil)

func (e Errors) Wrapped() error {
	if len(e.E) == 0 {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	var sb strings.Builder
	for i, err := range e.E {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Map applies f to every element of src with at most concurrencyLimit calls in
// flight (no limit when concurrencyLimit <= 0). Results arrive in completion
// order, not in the order of src. Every element is attempted; the failures are
// returned together.
func Map[T any, D any](src []T, concurrencyLimit int, f func(T) (D, error)) ([]D, error) {
	if len(src) == 0 {
		return []D{}, nil
	}

	if concurrencyLimit <= 0 {
		concurrencyLimit = len(src)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([]D, 0, len(src))
		errs    Errors
	)
	limiter := make(chan struct{}, concurrencyLimit)

	wg.Add(len(src))
	for _, element := range src {
		limiter <- struct{}{}
		go func(el T) {
			defer func() {
				<-limiter
				wg.Done()
			}()

			r, err := f(el)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs.E = append(errs.E, err)
				return
			}
			results = append(results, r)
		}(element)
	}

	wg.Wait()

	return results, errs.Wrapped()
}
