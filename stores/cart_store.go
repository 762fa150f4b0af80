package stores

import (
	"errors"
	"sync"
	"time"

	"github.com/plant-decor/KLTN-PlantDecor-Mobile/models"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotInCart is returned when a bounded update targets a missing line.
	ErrNotInCart = errors.New("item is not in the cart")
	// ErrQuantityLimit is returned when a bounded update would push a line
	// past its limit.
	ErrQuantityLimit = errors.New("cart line quantity limit reached")
)

// CartStore is the local cart. It does no I/O.
//
// Invariants: at most one line per product id, and no line with quantity <= 0.
// Lines keep the order in which products were first added.
type CartStore struct {
	mu    sync.Mutex
	items []models.CartLine
	now   func() time.Time
}

// NewCartStore creates an empty cart.
func NewCartStore() *CartStore {
	return &CartStore{now: time.Now}
}

func (c *CartStore) indexOf(productID string) int {
	for i, line := range c.items {
		if line.Product.ID == productID {
			return i
		}
	}
	return -1
}

// AddToCart adds quantity of product, merging into an existing line.
// Quantities below 1 are ignored.
func (c *CartStore) AddToCart(product models.Product, quantity int) {
	if quantity < 1 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.add(product, quantity)
}

// AddWithinLimit adds like AddToCart unless the line would end up above
// limit, in which case the cart is left unchanged and ErrQuantityLimit is
// returned.
func (c *CartStore) AddWithinLimit(product models.Product, quantity, limit int) error {
	if quantity < 1 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	current := 0
	if i := c.indexOf(product.ID); i >= 0 {
		current = c.items[i].Quantity
	}
	if current+quantity > limit {
		return ErrQuantityLimit
	}
	c.add(product, quantity)
	return nil
}

func (c *CartStore) add(product models.Product, quantity int) {
	if i := c.indexOf(product.ID); i >= 0 {
		c.items[i].Quantity += quantity
		return
	}
	c.items = append(c.items, models.CartLine{
		ID:       models.NewCartLineID(product.ID, c.now()),
		Product:  product,
		Quantity: quantity,
	})
}

// RemoveFromCart drops the line for productID if there is one.
func (c *CartStore) RemoveFromCart(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(productID)
}

func (c *CartStore) remove(productID string) {
	if i := c.indexOf(productID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// UpdateQuantity overwrites the quantity; quantity <= 0 removes the line.
func (c *CartStore) UpdateQuantity(productID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if quantity <= 0 {
		c.remove(productID)
		return
	}
	if i := c.indexOf(productID); i >= 0 {
		c.items[i].Quantity = quantity
	}
}

// IncrementQuantity adds one to an existing line.
func (c *CartStore) IncrementQuantity(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(productID); i >= 0 {
		c.items[i].Quantity++
	}
}

// IncrementWithinLimit adds one to an existing line unless it is already at
// limit.
func (c *CartStore) IncrementWithinLimit(productID string, limit int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(productID)
	if i < 0 {
		return ErrNotInCart
	}
	if c.items[i].Quantity >= limit {
		return ErrQuantityLimit
	}
	c.items[i].Quantity++
	return nil
}

// DecrementQuantity removes the line instead of reaching zero.
func (c *CartStore) DecrementQuantity(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	if c.items[i].Quantity <= 1 {
		c.remove(productID)
		return
	}
	c.items[i].Quantity--
}

// ClearCart empties the cart.
func (c *CartStore) ClearCart() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

// GetItemQuantity returns 0 when the product is not in the cart.
func (c *CartStore) GetItemQuantity(productID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(productID); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

// TotalItems sums the quantities of all lines.
func (c *CartStore) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalItems(c.items)
}

// TotalPrice sums each line at the product's saleable price.
func (c *CartStore) TotalPrice() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalPrice(c.items)
}

// Lines returns a copy of the lines in add order.
func (c *CartStore) Lines() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CartLine(nil), c.items...)
}

// View returns lines and totals computed from the same state.
func (c *CartStore) View() models.CartView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.CartView{
		Items:      append([]models.CartLine{}, c.items...),
		TotalItems: totalItems(c.items),
		TotalPrice: totalPrice(c.items),
	}
}

func totalItems(lines []models.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func totalPrice(lines []models.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}
