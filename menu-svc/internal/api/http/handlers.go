package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"foodbox/menu-svc/internal/domain"
	"foodbox/menu-svc/internal/service"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxImageSize = 10 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type ImageSaver interface {
	Save(ctx context.Context, foodID, ext string, src io.Reader) (string, error)
}

type Handler struct {
	Foods    service.FoodServiceInterface
	Images   ImageSaver
	AdminKey string
	Logger   *zap.Logger
}

func NewHandler(foodSvc service.FoodServiceInterface, images ImageSaver, adminKey string, logger *zap.Logger) *Handler {
	return &Handler{
		Foods:    foodSvc,
		Images:   images,
		AdminKey: adminKey,
		Logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	foods := r.PathPrefix("/api/foods").Subrouter()
	foods.HandleFunc("", h.listFoods).Methods("GET")
	foods.HandleFunc("/categories", h.listCategories).Methods("GET")
	foods.HandleFunc("/popular", h.popularFoods).Methods("GET")
	foods.HandleFunc("/recommended/{id}", h.recommendedFoods).Methods("GET")
	foods.HandleFunc("/{id}", h.getFood).Methods("GET")

	admin := foods.NewRoute().Subrouter()
	admin.Use(h.adminOnly)
	admin.HandleFunc("", h.createFood).Methods("POST")
	admin.HandleFunc("/{id}", h.updateFood).Methods("PUT")
	admin.HandleFunc("/{id}", h.deleteFood).Methods("DELETE")
	admin.HandleFunc("/{id}/image", h.uploadFoodImage).Methods("POST")
}

// adminOnly checks X-Admin-Key. An empty configured key disables catalog writes.
func (h *Handler) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		given := r.Header.Get("X-Admin-Key")
		if h.AdminKey == "" || subtle.ConstantTimeCompare([]byte(given), []byte(h.AdminKey)) != 1 {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "menu-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) listFoods(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	var (
		foods []domain.Food
		err   error
	)
	if category != "" {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 100
		}
		foods, err = h.Foods.ListByCategory(r.Context(), category, "", limit)
	} else {
		foods, err = h.Foods.ListAvailable(r.Context())
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, foods)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Foods.Categories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) popularFoods(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	period := domain.Period(r.URL.Query().Get("period"))

	popular, err := h.Foods.Popular(r.Context(), period, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, popular)
}

func (h *Handler) recommendedFoods(w http.ResponseWriter, r *http.Request) {
	foods, err := h.Foods.Recommended(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, foods)
}

func (h *Handler) getFood(w http.ResponseWriter, r *http.Request) {
	food, err := h.Foods.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, food)
}

func (h *Handler) createFood(w http.ResponseWriter, r *http.Request) {
	var in domain.FoodInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	food, err := h.Foods.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, food)
}

func (h *Handler) updateFood(w http.ResponseWriter, r *http.Request) {
	var in domain.FoodInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	food, err := h.Foods.Update(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, food)
}

func (h *Handler) deleteFood(w http.ResponseWriter, r *http.Request) {
	if err := h.Foods.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Food deleted")
}

func (h *Handler) uploadFoodImage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.Foods.Get(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+1<<20)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeMessage(w, http.StatusBadRequest, "File too large")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Error retrieving file")
		return
	}
	defer file.Close()
	if header.Size > maxImageSize {
		writeMessage(w, http.StatusBadRequest, "File too large")
		return
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && err != io.ErrUnexpectedEOF {
		writeMessage(w, http.StatusBadRequest, "Error retrieving file")
		return
	}
	ext, ok := imageExtensions[http.DetectContentType(sniff[:n])]
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Only JPEG, PNG, GIF and WebP images are allowed")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.writeError(w, r, err)
		return
	}

	imageURL, err := h.Images.Save(r.Context(), id, ext, file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	food, err := h.Foods.UpdateImage(r.Context(), id, imageURL)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, food)
}
