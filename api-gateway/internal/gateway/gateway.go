package gateway

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	MenuSvcURL  string
	OrderSvcURL string
	FrontendDir string
}

type Gateway struct {
	config Config
	client HTTPClient
	logger *zap.Logger
	routes []route
}

type route struct {
	prefix string
	target string
}

func NewGateway(config Config, client HTTPClient, logger *zap.Logger) *Gateway {
	if config.FrontendDir == "" {
		config.FrontendDir = "./frontend"
	}
	return &Gateway{
		config: config,
		client: client,
		logger: logger,
		routes: []route{
			{prefix: "/api/foods", target: config.MenuSvcURL},
			{prefix: "/uploads/", target: config.MenuSvcURL},
			{prefix: "/api/cart", target: config.OrderSvcURL},
			{prefix: "/api/orders", target: config.OrderSvcURL},
			{prefix: "/api/auth/", target: config.OrderSvcURL},
			{prefix: "/api/users/", target: config.OrderSvcURL},
			{prefix: "/api/admin/orders", target: config.OrderSvcURL},
		},
	}
}

func (g *Gateway) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status":  "healthy",
		"service": "api-gateway",
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ProxyRequest forwards r unchanged to targetURL and copies the response back.
func (g *Gateway) ProxyRequest(w http.ResponseWriter, r *http.Request, targetURL string) {
	url := targetURL + r.URL.Path
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.RawQuery
	}
	g.logger.Debug("proxy", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.String("target", targetURL))

	req, err := http.NewRequestWithContext(r.Context(), r.Method, url, r.Body)
	if err != nil {
		g.logger.Error("build upstream request", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	req.ContentLength = r.ContentLength
	for k, v := range r.Header {
		req.Header[k] = v
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		req.Header.Set("X-Forwarded-For", host)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("upstream unavailable", zap.String("target", targetURL), zap.Error(err))
		writeMessage(w, http.StatusBadGateway, "Service unavailable")
		return
	}
	defer resp.Body.Close()

	for k, v := range resp.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		g.logger.Warn("copy upstream response", zap.Error(err))
	}
}

func (g *Gateway) RouteHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	for _, rt := range g.routes {
		if matches(path, rt.prefix) {
			g.ProxyRequest(w, r, rt.target)
			return
		}
	}

	if strings.HasPrefix(path, "/api/") {
		g.logger.Info("unmatched api route", zap.String("path", path))
		writeMessage(w, http.StatusNotFound, "API route not found")
		return
	}

	g.serveFrontend(w, r)
}

// matches treats a prefix without a trailing slash as a path segment, so
// /api/foods matches /api/foods and /api/foods/1 but not /api/foodstuff.
func matches(path, prefix string) bool {
	if strings.HasSuffix(prefix, "/") {
		return strings.HasPrefix(path, prefix)
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// serveFrontend serves existing static files and falls back to index.html for client routes.
func (g *Gateway) serveFrontend(w http.ResponseWriter, r *http.Request) {
	clean := filepath.Clean("/" + r.URL.Path)
	candidate := filepath.Join(g.config.FrontendDir, clean)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		http.ServeFile(w, r, candidate)
		return
	}
	http.ServeFile(w, r, filepath.Join(g.config.FrontendDir, "index.html"))
}

func (g *Gateway) SetupRoutes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", g.HealthCheck).Methods("GET")
	r.PathPrefix("/").HandlerFunc(g.RouteHandler)
	return r
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
