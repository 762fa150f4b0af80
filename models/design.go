package models

import "time"

type RoomType string

const (
	RoomLivingRoom RoomType = "living_room"
	RoomBedroom    RoomType = "bedroom"
	RoomOffice     RoomType = "office"
	RoomBalcony    RoomType = "balcony"
	RoomGarden     RoomType = "garden"
)

type DesignStyle string

const (
	StyleModern     DesignStyle = "modern"
	StyleMinimalist DesignStyle = "minimalist"
	StyleTropical   DesignStyle = "tropical"
	StyleZen        DesignStyle = "zen"
	StyleClassic    DesignStyle = "classic"
)

type Budget string

const (
	BudgetLow    Budget = "low"
	BudgetMedium Budget = "medium"
	BudgetHigh   Budget = "high"
)

// RoomImage is the photo uploaded with a design request.
type RoomImage struct {
	FileName    string
	ContentType string
	Data        []byte `form:"roomImage" validate:"required,gt=0"`
}

// DesignRequest is validated with its validate tags before upload.
type DesignRequest struct {
	RoomImage   RoomImage
	RoomType    RoomType    `form:"roomType" validate:"required,oneof=living_room bedroom office balcony garden"`
	Style       DesignStyle `form:"style" validate:"required,oneof=modern minimalist tropical zen classic"`
	Budget      Budget      `form:"budget" validate:"omitempty,oneof=low medium high"`
	Preferences string      `form:"preferences"`
}

// DesignResult is a generated room design with its suggested plants.
type DesignResult struct {
	ID                string    `json:"id"`
	OriginalImage     string    `json:"originalImage"`
	DesignedImage     string    `json:"designedImage"`
	SuggestedProducts []Product `json:"suggestedProducts"`
	Description       string    `json:"description"`
	EstimatedCost     float64   `json:"estimatedCost"`
	CreatedAt         time.Time `json:"createdAt"`
}
