package app

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strings"
	"time"
	"tush00nka/taskboard/internal/handler"

	_ "tush00nka/taskboard/docs"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"pkt.systems/pslog"
)

// Routes is implemented by every handler group.
type Routes interface {
	RegisterRoutes(router *mux.Router)
}

type ServerOptions struct {
	AllowedOrigins []string
	Metrics        http.Handler
	// Uploads serves stored files under UploadsPrefix when set.
	Uploads       http.Handler
	UploadsPrefix string
}

type Server struct {
	router  *mux.Router
	handler http.Handler
	logger  pslog.Logger
}

func NewServer(logger pslog.Logger, opts ServerOptions, routes ...Routes) *Server {
	router := mux.NewRouter()
	router.Use(handler.Logging(logger))

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/ping", handler.Ping).Methods("GET", "OPTIONS")
	for _, r := range routes {
		r.RegisterRoutes(api)
	}

	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics).Methods("GET")
	}

	if opts.Uploads != nil && opts.UploadsPrefix != "" {
		prefix := strings.TrimSuffix(opts.UploadsPrefix, "/") + "/"
		router.PathPrefix(prefix).Handler(http.StripPrefix(prefix, opts.Uploads)).Methods("GET", "HEAD")
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With"}),
		handlers.ExposedHeaders([]string{"Content-Disposition"}),
	)

	return &Server{router: router, handler: cors(router), logger: logger}
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, port string) error {
	srv := &http.Server{
		Handler:           s.handler,
		Addr:              ":" + port,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.starting", "port", port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server.stopped")
	return nil
}

// fileServer serves single files from root. Directory listings and
// dot-files (in-flight temp uploads) are not exposed.
func fileServer(root string) http.Handler {
	files := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + r.URL.Path)
		base := path.Base(name)
		if name == "/" || strings.HasSuffix(r.URL.Path, "/") || strings.HasPrefix(base, ".") || path.Dir(name) != "/" {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
