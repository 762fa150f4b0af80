package mockapi

import (
	"fmt"
	"time"

	"github.com/plant-decor/KLTN-PlantDecor-Mobile/models"
	"github.com/shopspring/decimal"
)

var seedCategories = []models.Category{
	{ID: "cat-indoor", Name: "Indoor plants", Slug: "indoor", Icon: "leaf"},
	{ID: "cat-succulent", Name: "Succulents", Slug: "succulent", Icon: "cactus"},
	{ID: "cat-outdoor", Name: "Outdoor plants", Slug: "outdoor", Icon: "tree"},
	{ID: "cat-pots", Name: "Pots & planters", Slug: "pots", Icon: "pot"},
}

type seedPlant struct {
	name  string
	cat   int
	price int64
	sale  int64
	care  models.CareLevel
	size  models.PlantSize
	light string
	water string
}

var seedPlants = []seedPlant{
	{"Monstera Deliciosa", 0, 350000, 299000, models.CareEasy, models.SizeLarge, "Bright indirect", "Weekly"},
	{"Snake Plant", 0, 180000, 0, models.CareEasy, models.SizeMedium, "Low to bright", "Every 2-3 weeks"},
	{"Fiddle Leaf Fig", 0, 520000, 0, models.CareHard, models.SizeExtraLarge, "Bright indirect", "Weekly"},
	{"Pothos Golden", 0, 95000, 79000, models.CareEasy, models.SizeSmall, "Low to bright", "Weekly"},
	{"ZZ Plant", 0, 210000, 0, models.CareEasy, models.SizeMedium, "Low", "Every 2-3 weeks"},
	{"Peace Lily", 0, 160000, 0, models.CareMedium, models.SizeMedium, "Medium indirect", "Twice a week"},
	{"Calathea Orbifolia", 0, 280000, 0, models.CareHard, models.SizeMedium, "Medium indirect", "Twice a week"},
	{"Echeveria Mix", 1, 45000, 0, models.CareEasy, models.SizeSmall, "Full sun", "Every 2 weeks"},
	{"Aloe Vera", 1, 60000, 0, models.CareEasy, models.SizeSmall, "Full sun", "Every 2 weeks"},
	{"Haworthia Zebra", 1, 55000, 49000, models.CareEasy, models.SizeSmall, "Bright indirect", "Every 2 weeks"},
	{"Jade Plant", 1, 120000, 0, models.CareEasy, models.SizeMedium, "Full sun", "Every 2 weeks"},
	{"Bougainvillea", 2, 240000, 0, models.CareMedium, models.SizeLarge, "Full sun", "Twice a week"},
	{"Areca Palm", 2, 390000, 340000, models.CareMedium, models.SizeExtraLarge, "Bright indirect", "Twice a week"},
	{"Lavender", 2, 130000, 0, models.CareMedium, models.SizeSmall, "Full sun", "Weekly"},
	{"Bamboo Palm", 2, 310000, 0, models.CareMedium, models.SizeLarge, "Medium indirect", "Weekly"},
	{"Ceramic Pot White 20cm", 3, 150000, 0, models.CareEasy, models.SizeMedium, "", ""},
	{"Terracotta Pot 15cm", 3, 70000, 0, models.CareEasy, models.SizeSmall, "", ""},
	{"Hanging Macrame Planter", 3, 110000, 99000, models.CareEasy, models.SizeSmall, "", ""},
	{"Self-watering Planter", 3, 260000, 0, models.CareEasy, models.SizeLarge, "", ""},
	{"Bird of Paradise", 0, 650000, 590000, models.CareMedium, models.SizeExtraLarge, "Bright direct", "Weekly"},
	{"Rubber Plant", 0, 230000, 0, models.CareEasy, models.SizeLarge, "Bright indirect", "Weekly"},
	{"String of Pearls", 1, 90000, 0, models.CareHard, models.SizeSmall, "Bright indirect", "Every 2 weeks"},
	{"Olive Tree", 2, 720000, 0, models.CareMedium, models.SizeExtraLarge, "Full sun", "Weekly"},
	{"Boston Fern", 0, 140000, 0, models.CareMedium, models.SizeMedium, "Medium indirect", "Twice a week"},
	{"Spider Plant", 0, 85000, 0, models.CareEasy, models.SizeSmall, "Bright indirect", "Weekly"},
}

// SeedCatalog builds the demo catalog. Creation times descend with the index
// so "newest" ordering is deterministic.
func SeedCatalog() ([]models.Product, []models.Category) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	products := make([]models.Product, 0, len(seedPlants))
	for i, p := range seedPlants {
		id := fmt.Sprintf("prod-%03d", i+1)
		product := models.Product{
			ID:               id,
			Name:             p.name,
			Slug:             slugify(p.name),
			Description:      p.name + " from the PlantDecor nursery.",
			Price:            decimal.NewFromInt(p.price),
			Images:           []string{fmt.Sprintf("https://cdn.plantdecor.vn/products/%s.jpg", id)},
			Category:         seedCategories[p.cat],
			Tags:             []string{seedCategories[p.cat].Slug, string(p.care)},
			Stock:            10 + i,
			Rating:           4.0 + float64(i%10)/10,
			ReviewCount:      i % 4,
			CareLevel:        p.care,
			LightRequirement: p.light,
			WaterFrequency:   p.water,
			Size:             p.size,
			IsAvailable:      true,
			CreatedAt:        base.Add(-time.Duration(i) * 24 * time.Hour),
		}
		if p.sale > 0 {
			sale := decimal.NewFromInt(p.sale)
			product.SalePrice = &sale
		}
		products = append(products, product)
	}
	return products, append([]models.Category(nil), seedCategories...)
}

func seedReviews(products []models.Product) map[string][]models.Review {
	out := make(map[string][]models.Review)
	for i, p := range products {
		for n := 0; n < p.ReviewCount; n++ {
			out[p.ID] = append(out[p.ID], models.Review{
				ID:        fmt.Sprintf("rev-%03d-%d", i+1, n+1),
				UserID:    fmt.Sprintf("seed-user-%d", n+1),
				UserName:  fmt.Sprintf("Customer %d", n+1),
				ProductID: p.ID,
				Rating:    5 - n,
				Comment:   "Arrived healthy and well packed.",
				CreatedAt: p.CreatedAt.Add(time.Duration(n+1) * time.Hour),
			})
		}
	}
	return out
}

func slugify(s string) string {
	out := make([]rune, 0, len(s))
	dash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
			dash = false
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
			dash = false
		default:
			if !dash && len(out) > 0 {
				out = append(out, '-')
				dash = true
			}
		}
	}
	if dash {
		out = out[:len(out)-1]
	}
	return string(out)
}
