package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mgpai22/subtrans/internal/logging"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL     = "https://en.wiktionary.org/api/rest_v1/page/definition/"
	DefaultLanguage    = "en"
	DefaultMaxAttempts = 1
	DefaultMaxWords    = 20
	DefaultTimeout     = 15 * time.Second
	DefaultRate        = 10

	userAgent = "subtrans/1.0 (subtitle translator)"
)

// Definition is one resolved dictionary entry.
type Definition struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
	Language   string `json:"language"`
}

// Result holds everything a lookup call resolved. Words that could not be
// resolved for any reason end up in NotFound.
type Result struct {
	Definitions []Definition `json:"definitions"`
	NotFound    []string     `json:"not_found"`
}

// Context renders the result as plain text suitable for a model prompt.
func (r *Result) Context() string {
	if r == nil || (len(r.Definitions) == 0 && len(r.NotFound) == 0) {
		return "No definitions were found."
	}

	var b strings.Builder
	if len(r.Definitions) > 0 {
		b.WriteString("Definitions:\n")
		for _, d := range r.Definitions {
			fmt.Fprintf(&b, "- %s: %s\n", d.Word, d.Definition)
		}
	}
	if len(r.NotFound) > 0 {
		fmt.Fprintf(&b, "Not found: %s\n", strings.Join(r.NotFound, ", "))
	}
	return strings.TrimSpace(b.String())
}

// Service is the dictionary lookup contract the pipeline consumes.
type Service interface {
	Lookup(ctx context.Context, words []string, language string, maxAttempts, maxWords int) *Result
}

// Client looks words up against the Wiktionary REST definition endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logging.Logger
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			// copy so a client passed to WithHTTPClient is left untouched
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

// WithRateLimit caps outgoing requests per second. r <= 0 disables the cap.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) {
		if r <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logging.OrNop(l)
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRate), DefaultRate),
		logger:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if !strings.HasSuffix(c.baseURL, "/") {
		c.baseURL += "/"
	}
	return c
}

var errNotFound = errors.New("word not found")

// permanentError marks a failure that another attempt cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Lookup resolves up to maxWords words, trying each one at most maxAttempts
// times. It never fails: unresolved words are reported in NotFound.
func (c *Client) Lookup(
	ctx context.Context,
	words []string,
	language string,
	maxAttempts, maxWords int,
) *Result {
	if language == "" {
		language = DefaultLanguage
	}
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	if maxWords < 1 {
		maxWords = DefaultMaxWords
	}
	if len(words) > maxWords {
		c.logger.Debugw("Truncating lookup request", "requested", len(words), "max_words", maxWords)
		words = words[:maxWords]
	}

	result := &Result{}
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}

		definition, err := c.lookupWord(ctx, word, language, maxAttempts)
		if err != nil {
			c.logger.Debugw("Definition not found", "word", word, "language", language, "error", err)
			result.NotFound = append(result.NotFound, word)
			continue
		}
		result.Definitions = append(result.Definitions, Definition{
			Word:       word,
			Definition: definition,
			Language:   language,
		})
	}

	c.logger.Infow("Dictionary lookup finished",
		"found", len(result.Definitions),
		"not_found", len(result.NotFound),
	)
	return result
}

func (c *Client) lookupWord(ctx context.Context, word, language string, maxAttempts int) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, err := c.fetch(ctx, word)
		if err == nil {
			definition, ok := firstDefinition(body, language)
			if !ok {
				return "", errNotFound
			}
			return CleanDefinition(definition), nil
		}

		lastErr = err
		var perm *permanentError
		if errors.As(err, &perm) || ctx.Err() != nil {
			break
		}
		c.logger.Debugw("Lookup attempt failed", "word", word, "attempt", attempt, "error", err)
	}
	return "", lastErr
}

func (c *Client) fetch(ctx context.Context, word string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &permanentError{err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+url.PathEscape(word), nil)
	if err != nil {
		return nil, &permanentError{err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &permanentError{err: errNotFound}
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, &permanentError{err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON response")
	}
	return body, nil
}

// firstDefinition returns the first definition of the first usage entry in
// the language section of a Wiktionary definition response.
func firstDefinition(body []byte, language string) (string, bool) {
	var section gjson.Result
	gjson.ParseBytes(body).ForEach(func(key, value gjson.Result) bool {
		if key.String() == language {
			section = value
			return false
		}
		return true
	})
	if !section.IsArray() {
		return "", false
	}

	for _, entry := range section.Array() {
		definitions := entry.Get("definitions").Array()
		if len(definitions) == 0 {
			continue
		}
		return definitions[0].Get("definition").String(), true
	}
	return "", false
}

var (
	htmlTagRegex     = regexp.MustCompile(`<[^>]+>`)
	templateRegex    = regexp.MustCompile(`\{\{[^}]+\}\}`)
	bracketRegex     = regexp.MustCompile(`\[[^\]]+\]`)
	parentheticRegex = regexp.MustCompile(`\([^)]+\)`)
)

// CleanDefinition strips markup and asides from a raw definition.
func CleanDefinition(text string) string {
	text = htmlTagRegex.ReplaceAllString(text, "")
	text = templateRegex.ReplaceAllString(text, "")
	text = bracketRegex.ReplaceAllString(text, "")
	text = parentheticRegex.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
