package proxy

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-Id"

type requestContext struct {
	resp   http.ResponseWriter
	req    *http.Request
	params []string
	logger *logrus.Entry
}

// fail the request context
func (c *requestContext) fail(err *httpError) {
	http.Error(c.resp, err.String(), err.statusCode)
}

type httpError struct {
	statusCode int
	message    string
	details    map[string]string
}

func (e httpError) Error() string {
	return fmt.Sprintf("[%d] %s", e.statusCode, e.message)
}

// String is the response body, details are listed one per line
func (e httpError) String() string {
	if len(e.details) == 0 {
		return e.message
	}

	fields := make([]string, 0, len(e.details))
	for f := range e.details {
		fields = append(fields, f)
	}

	sort.Strings(fields)

	lines := []string{e.message}
	for _, f := range fields {
		lines = append(lines, f+": "+e.details[f])
	}

	return strings.Join(lines, "\n")
}

func (e httpError) ErrorWithDetails() string {
	return fmt.Sprintf("[%d] %s %v", e.statusCode, e.message, e.details)
}

// route represents pattern and route handler
type route struct {
	rx      *regexp.Regexp
	handler handler
}

type httpMux struct {
	cfg             Config
	routes          []route
	notFoundHandler errorHandler
	logger          *logrus.Logger
	mustStop        uint32
}

func newMux(cfg Config, imageProxy ImageProxy, lg *logrus.Logger) *httpMux {
	mux := &httpMux{
		cfg:             cfg,
		logger:          lg,
		notFoundHandler: makeErrorHandler(&httpError{statusCode: http.StatusNotFound, message: "Route not found"}),
	}

	mux.addRoute(`^/v1/images/([0-9a-f]{24})/([\w-]+)\.(png|jpe?g|gif|bmp|tiff?)$`, makeProxyHandler(cfg, imageProxy))
	mux.addRoute(`^/(health)$`, healthHandler)

	return mux
}

// stop the mux
func (mux *httpMux) stop() {
	atomic.StoreUint32(&mux.mustStop, 1)
}

// addRoute to http mux
func (mux *httpMux) addRoute(pattern string, h handler) {
	rx := regexp.MustCompile(pattern)
	r := route{rx: rx, handler: h}
	mux.routes = append(mux.routes, r)
}

// ServeHTTP implements http.handler
func (mux *httpMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadUint32(&mux.mustStop) == 1 {
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	}

	requestID := r.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	w.Header().Set(requestIDHeader, requestID)

	rCtx := &requestContext{
		resp: w,
		req:  r,
		logger: mux.logger.WithFields(logrus.Fields{
			"requestId": requestID,
			"path":      r.URL.Path,
		}),
	}

	defer func() {
		if err := recover(); err != nil {
			rCtx.logger.Errorf("panic recovery: %v", err)
			makeErrorHandler(errors.Errorf("Recovered from panic: %v", err))(rCtx)
		}
	}()

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		makeErrorHandler(&httpError{statusCode: http.StatusMethodNotAllowed, message: "Method not allowed"})(rCtx)
		return
	}

	for _, rt := range mux.routes {
		matches := rt.rx.FindStringSubmatch(r.URL.Path)
		if len(matches) > 1 {
			rCtx.params = matches[1:]
			if err := rt.handler(rCtx); err != nil {
				makeErrorHandler(err)(rCtx)
			}
			return
		}
	}

	mux.notFoundHandler(rCtx)
}
