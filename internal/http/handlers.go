package httpapi

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"olivander/internal/domain"
	"olivander/internal/logging"
	"olivander/internal/repository"
	"olivander/internal/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

func init() {
	// report json/query names in validation errors instead of Go field names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	}
}

type Server struct {
	engine   *gin.Engine
	products *service.ProductService
	orders   *service.OrderService
	health   repository.Pinger
}

func NewServer(products *service.ProductService, orders *service.OrderService, health repository.Pinger, logger *slog.Logger) *Server {
	r := gin.New()
	r.Use(gin.Recovery(), Metrics(), RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", requestIDHeader},
	}))
	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	s := &Server{engine: r, products: products, orders: orders, health: health}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.GET("/", s.index)
	s.engine.GET("/healthz", s.healthz)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := s.engine.Group("/api")
	{
		products := api.Group("/products")
		products.GET("", s.listProducts)
		products.POST("", s.createProduct)
		products.GET("/:id", s.getProduct)
		products.PUT("/:id", s.replaceProduct)
		products.DELETE("/:id", s.deleteProduct)

		orders := api.Group("/orders")
		orders.POST("", s.createOrder)
		orders.GET("/:id", s.getOrder)
	}
}

func (s *Server) index(c *gin.Context) {
	list, err := s.products.Featured(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{"products": toProductResponses(list)})
}

// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (s *Server) healthz(c *gin.Context) {
	if err := s.health.Ping(c.Request.Context()); err != nil {
		logging.From(c).Warn("health check failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Product handlers
type productReq struct {
	Name        string   `json:"name" binding:"required"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Stock       *int64   `json:"stock" binding:"omitempty,gte=0"`
	Categories  []string `json:"categories"`
}

func (r productReq) input() domain.ProductInput {
	return domain.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       *r.Price,
		Stock:       r.Stock,
		Categories:  r.Categories,
	}
}

type listProductsQuery struct {
	Q     string `form:"q"`
	Limit int64  `form:"limit,default=50" binding:"gte=0"`
	Skip  int64  `form:"skip,default=0" binding:"gte=0"`
}

// @Summary List or search products
// @Tags products
// @Produce json
// @Param q query string false "Text search over name and description"
// @Param limit query int false "Max items (default 50, 0 = no limit)"
// @Param skip query int false "Items to skip (default 0)"
// @Success 200 {array} productResponse
// @Failure 422 {object} map[string]any
// @Router /api/products [get]
func (s *Server) listProducts(c *gin.Context) {
	var q listProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.invalid(c, err)
		return
	}
	list, err := s.products.List(c.Request.Context(), repository.ProductFilter{
		Search: strings.TrimSpace(q.Q),
		Skip:   q.Skip,
		Limit:  q.Limit,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(list))
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} productResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	p, err := s.products.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Param input body productReq true "Product"
// @Success 201 {object} productResponse
// @Failure 422 {object} map[string]any
// @Router /api/products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.invalid(c, err)
		return
	}
	p, err := s.products.Create(c.Request.Context(), req.input())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(p))
}

// @Summary Replace product
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param input body productReq true "Product"
// @Success 200 {object} productResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]any
// @Router /api/products/{id} [put]
func (s *Server) replaceProduct(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.invalid(c, err)
		return
	}
	p, err := s.products.Replace(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

// @Summary Delete product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/products/{id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := s.products.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// Order handlers
type orderItemReq struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

type createOrderReq struct {
	CustomerName  string         `json:"customer_name" binding:"required"`
	CustomerEmail string         `json:"customer_email" binding:"required"`
	Items         []orderItemReq `json:"items" binding:"required,min=1,dive"`
}

// @Summary Create order
// @Description Prices are copied from the products at creation time. Any unknown product rejects the whole order.
// @Tags orders
// @Accept json
// @Produce json
// @Param input body createOrderReq true "Order"
// @Success 201 {object} orderResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]any
// @Router /api/orders [post]
func (s *Server) createOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.invalid(c, err)
		return
	}
	lines := make([]domain.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, domain.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	o, err := s.orders.CreateOrder(c.Request.Context(), req.CustomerName, req.CustomerEmail, lines)
	if err != nil {
		s.fail(c, err)
		return
	}
	ordersCreated.Inc()
	logging.From(c).Info("order created", "order_id", o.ID.Hex(), "items", len(o.Items), "total", o.Total)
	c.JSON(http.StatusCreated, toOrderResponse(o))
}

// @Summary Get order by id
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} orderResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/orders/{id} [get]
func (s *Server) getOrder(c *gin.Context) {
	o, err := s.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// invalid answers 422 for payloads that fail binding.
func (s *Server) invalid(c *gin.Context, err error) {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "malformed payload", "detail": err.Error()})
		return
	}
	fields := make([]fieldError, 0, len(ves))
	for _, fe := range ves {
		name := fe.Namespace()
		if i := strings.IndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		fields = append(fields, fieldError{Field: name, Rule: fe.Tag()})
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": fields})
}

func (s *Server) fail(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	msg := err.Error()
	switch {
	case status == http.StatusServiceUnavailable:
		msg = repository.ErrUnavailable.Error()
	case status >= http.StatusInternalServerError:
		msg = "internal error"
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": msg})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnknownProduct):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
