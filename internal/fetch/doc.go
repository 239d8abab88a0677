// Package fetch retrieves web pages for recipe collection.
//
// A Fetcher performs a bounded number of attempts per URL with a linear
// backoff between them. A 404 response fails immediately because the
// resource does not exist; any other failure status, a timeout or an
// unexpected transport error consumes one attempt and is retried after
// RetryInterval * attempt. Successful responses are decoded to UTF-8 and
// parsed into a goquery document.
//
// # Usage
//
//	f := fetch.NewFetcher(&http.Client{Timeout: time.Minute},
//	    fetch.WithMaxRetries(2),
//	    fetch.WithRetryInterval(time.Minute),
//	)
//	page, err := f.Fetch(ctx, "https://example.com/recipe/soup")
package fetch
