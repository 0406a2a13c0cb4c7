package async

import "sync"

// WaitAll waits for all the given errables to finish, and returns
// the first error received, if any.
func WaitAll(chans ...<-chan error) error {
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	wg.Add(len(chans))
	for _, ch := range chans {
		go func(ch <-chan error) {
			defer wg.Done()
			if err, open := <-ch; open && err != nil {
				once.Do(func() { firstErr = err })
			}
		}(ch)
	}

	wg.Wait()
	return firstErr
}
