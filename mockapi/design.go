package mockapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/models"
	"github.com/shopspring/decimal"
)

const maxRoomImageBytes = 10 << 20

type designForm struct {
	RoomType    models.RoomType    `form:"roomType" binding:"required,oneof=living_room bedroom office balcony garden"`
	Style       models.DesignStyle `form:"style" binding:"required,oneof=modern minimalist tropical zen classic"`
	Budget      models.Budget      `form:"budget" binding:"omitempty,oneof=low medium high"`
	Preferences string             `form:"preferences"`
}

// invalidFormMessage names the first field that failed binding.
func invalidFormMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		name := fieldErrs[0].Field()
		return strings.ToLower(name[:1]) + name[1:] + " is invalid"
	}
	return "Invalid design request"
}

// CreateDesign stores the upload and answers with a canned design: up to
// three available products priced within the budget.
func (s *Server) CreateDesign(c *gin.Context) {
	fh, err := c.FormFile("roomImage")
	if err != nil {
		fail(c, http.StatusBadRequest, "roomImage is required")
		return
	}
	if fh.Size > maxRoomImageBytes {
		fail(c, http.StatusRequestEntityTooLarge, "roomImage is too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "roomImage is unreadable")
		return
	}
	_, err = io.Copy(io.Discard, f)
	f.Close()
	if err != nil {
		fail(c, http.StatusBadRequest, "roomImage is unreadable")
		return
	}

	var form designForm
	if err := c.ShouldBind(&form); err != nil {
		fail(c, http.StatusBadRequest, invalidFormMessage(err))
		return
	}
	roomType, style, budget := form.RoomType, form.Style, form.Budget

	id := uuid.NewString()
	userID := c.GetString(userContextKey)

	s.mu.Lock()
	defer s.mu.Unlock()

	suggested := make([]models.Product, 0, 3)
	cost := decimal.Zero
	for _, p := range s.products {
		if len(suggested) == 3 {
			break
		}
		if !p.IsAvailable || !suitsBudget(p, budget) {
			continue
		}
		suggested = append(suggested, p)
		cost = cost.Add(p.SaleablePrice())
	}

	estimated, _ := cost.Float64()
	result := models.DesignResult{
		ID:                id,
		OriginalImage:     fmt.Sprintf("https://cdn.plantdecor.vn/uploads/%s/%s", id, fh.Filename),
		DesignedImage:     fmt.Sprintf("https://cdn.plantdecor.vn/designs/%s.jpg", id),
		SuggestedProducts: suggested,
		Description:       fmt.Sprintf("A %s %s with %d plants.", style, roomLabel(roomType), len(suggested)),
		EstimatedCost:     estimated,
		CreatedAt:         time.Now().UTC(),
	}
	s.designs[userID] = append([]models.DesignResult{result}, s.designs[userID]...)
	ok(c, http.StatusCreated, result)
}

func suitsBudget(p models.Product, budget models.Budget) bool {
	switch budget {
	case models.BudgetLow:
		return p.SaleablePrice().LessThanOrEqual(decimal.NewFromInt(150000))
	case models.BudgetMedium:
		return p.SaleablePrice().LessThanOrEqual(decimal.NewFromInt(400000))
	default:
		return true
	}
}

func roomLabel(r models.RoomType) string {
	switch r {
	case models.RoomLivingRoom:
		return "living room"
	default:
		return string(r)
	}
}

func (s *Server) ListDesigns(c *gin.Context) {
	s.mu.Lock()
	history := append([]models.DesignResult{}, s.designs[c.GetString(userContextKey)]...)
	s.mu.Unlock()
	ok(c, http.StatusOK, history)
}

func (s *Server) GetDesign(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.designs[c.GetString(userContextKey)] {
		if d.ID == id {
			ok(c, http.StatusOK, d)
			return
		}
	}
	fail(c, http.StatusNotFound, "Design not found")
}
