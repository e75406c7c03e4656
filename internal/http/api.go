package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"listing-service/internal/domain"
	"listing-service/internal/service"
	"listing-service/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	offers service.OfferService
	users  service.UserService
	logger *logrus.Logger
}

func NewHandler(offers service.OfferService, users service.UserService, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		offers: offers,
		users:  users,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.MaxMultipartMemory = maxMultipartMemory
	router.Use(corsMiddleware(), requestMiddleware(h.logger))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to the listing API"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/offers", h.searchOffers)
	router.GET("/offer/:id", h.getOffer)

	auth := AuthGate(h.users)
	offers := router.Group("/offer", auth)
	{
		offers.POST("/publish", h.publishOffer)
		offers.PUT("/update/:id", h.updateOffer)
		offers.POST("/:id/pictures", h.attachPictures)
		offers.DELETE("/delete/:id", h.deleteOffer)
	}

	user := router.Group("/user")
	{
		user.POST("/signup", h.signup)
		user.POST("/login", h.login)
		user.POST("/token/rotate", auth, h.rotateToken)
	}
}

func (h *Handler) searchOffers(c *gin.Context) {
	params := service.SearchParams{
		Title:    c.Query("title"),
		PriceMin: optionalFloat(c.Query("priceMin")),
		PriceMax: optionalFloat(c.Query("priceMax")),
		Sort:     c.Query("sort"),
		Page:     service.ParsePage(c.Query("page")),
		Limit:    service.ParseLimit(c.Query("limit")),
	}

	res, err := h.offers.Search(c.Request.Context(), params)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := SearchResponse{Count: res.Count, Offers: make([]OfferResponse, 0, len(res.Offers))}
	for _, offer := range res.Offers {
		resp.Offers = append(resp.Offers, offerToResponse(offer))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getOffer(c *gin.Context) {
	offer, err := h.offers.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, offerToResponse(*offer))
}

func (h *Handler) publishOffer(c *gin.Context) {
	images, release, err := offerImages(c)
	if err != nil {
		writeError(c, err)
		return
	}
	defer release()

	price, err := parsePrice(c.PostForm("price"))
	if err != nil {
		writeError(c, err)
		return
	}

	offer, err := h.offers.Publish(c.Request.Context(), currentUser(c), service.PublishInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Price:       price,
		Details:     formDetails(c),
		Images:      images,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "offer created", "offer": offerToResponse(*offer)})
}

func (h *Handler) updateOffer(c *gin.Context) {
	images, release, err := offerImages(c)
	if err != nil {
		writeError(c, err)
		return
	}
	defer release()

	patch := service.OfferPatch{
		Title:       optionalForm(c, "title"),
		Description: optionalForm(c, "description"),
		Details:     formDetails(c),
	}
	if raw := optionalForm(c, "price"); raw != nil {
		price, err := parsePrice(*raw)
		if err != nil {
			writeError(c, err)
			return
		}
		patch.Price = &price
	}
	if len(images) > 0 {
		patch.Image = &images[0]
	}

	if _, err := h.offers.Update(c.Request.Context(), currentUser(c), c.Param("id"), patch); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, "Offer modified successfully!")
}

func (h *Handler) attachPictures(c *gin.Context) {
	images, release, err := offerImages(c)
	if err != nil {
		writeError(c, err)
		return
	}
	defer release()

	offer, err := h.offers.AttachPictures(c.Request.Context(), currentUser(c), c.Param("id"), images)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, offerToResponse(*offer))
}

func (h *Handler) deleteOffer(c *gin.Context) {
	if err := h.offers.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, "Offer deleted successfully!")
}

func (h *Handler) signup(c *gin.Context) {
	avatars, release, err := formImages(c, "avatar")
	if err != nil {
		writeError(c, err)
		return
	}
	defer release()

	in := service.SignupInput{
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
		Username: c.PostForm("username"),
		Phone:    c.PostForm("phone"),
	}
	in.Newsletter, _ = strconv.ParseBool(strings.TrimSpace(c.PostForm("newsletter")))
	if len(avatars) > 0 {
		in.Avatar = &avatars[0]
	}

	user, err := h.users.Signup(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userToResponse(user))
}

type loginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "User not found"})
			return
		}
		writeError(c, err)
		return
	}

	resp := userToResponse(user)
	resp.Email = ""
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) rotateToken(c *gin.Context) {
	caller := currentUser(c)
	if caller == nil {
		writeError(c, domain.ErrUnauthorized)
		return
	}
	user, err := h.users.RotateToken(c.Request.Context(), caller.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"_id": user.ID, "token": user.Token})
}

// offerImages collects the files posted as picture[] or picture.
func offerImages(c *gin.Context) ([]storage.Image, func(), error) {
	many, releaseMany, err := formImages(c, "picture[]")
	if err != nil {
		return nil, releaseMany, err
	}
	one, releaseOne, err := formImages(c, "picture")
	if err != nil {
		releaseMany()
		return nil, releaseOne, err
	}
	return append(many, one...), func() {
		releaseMany()
		releaseOne()
	}, nil
}
