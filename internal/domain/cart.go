package domain

// Fallback values used when a cart line's product lookup fails. Rendering
// must never break on incomplete data.
const (
	FallbackProductName = "Unknown Product"
)

// CartLine is one entry in the cart. The product fields are denormalized at
// enrichment time from the catalog; when the lookup fails they carry safe
// fallbacks instead.
type CartLine struct {
	ID        string   `json:"id"`
	ProductID string   `json:"product_id"`
	Name      string   `json:"name"`
	Image     string   `json:"image"`
	Price     float64  `json:"price"`
	Category  Category `json:"category,omitempty"`
	Size      string   `json:"size,omitempty"`
	Color     string   `json:"color,omitempty"`
	Quantity  int      `json:"quantity"`
}

// Subtotal returns the line's price times quantity.
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// Cart holds the ordered cart lines. The item count is always derived from
// the lines, never stored, so it cannot drift.
type Cart struct {
	Lines []CartLine `json:"items"`
}

// Count returns the total quantity across all lines.
func (c *Cart) Count() int {
	var count int
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return count
}

// Total returns the sum of all line subtotals.
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.Subtotal()
	}
	return total
}

// FindLineIndex returns the index of the line with the given line id, or -1.
func (c *Cart) FindLineIndex(lineID string) int {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return i
		}
	}
	return -1
}

// FindProductIndex returns the index of the line referencing the given
// product, or -1.
func (c *Cart) FindProductIndex(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Upsert merges an addition into the cart by product identity: an existing
// line for the product has its quantity incremented, otherwise the line is
// appended. Quantities below 1 are clamped to 1.
func (c *Cart) Upsert(line CartLine) {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	if i := c.FindProductIndex(line.ProductID); i >= 0 {
		c.Lines[i].Quantity += line.Quantity
		return
	}
	c.Lines = append(c.Lines, line)
}

// SetQuantity updates a line's quantity. A quantity of zero or less removes
// the line (delete-on-zero); otherwise the value is applied as-is, already
// clamped to >= 1 by callers issuing the server request.
func (c *Cart) SetQuantity(lineID string, quantity int) {
	i := c.FindLineIndex(lineID)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		c.Remove(lineID)
		return
	}
	c.Lines[i].Quantity = quantity
}

// Remove deletes the line with the given id. Absent ids are a no-op, not an
// error.
func (c *Cart) Remove(lineID string) {
	i := c.FindLineIndex(lineID)
	if i < 0 {
		return
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = nil
}
