package cart

// Line is one product in a cart.
type Line struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// Cart keeps its lines in the order products were first added.
type Cart struct {
	Lines []Line `json:"lines"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Quantity returns the stored quantity for productID, or 0.
func (c *Cart) Quantity(productID uint) int {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

// Set stores quantity for productID, appending a new line if needed.
func (c *Cart) Set(productID uint, quantity int) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity = quantity
			return
		}
	}
	c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: quantity})
}

func (c *Cart) Remove(productID uint) {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// ProductIDs lists the products in cart order.
func (c *Cart) ProductIDs() []uint {
	ids := make([]uint, len(c.Lines))
	for i, l := range c.Lines {
		ids[i] = l.ProductID
	}
	return ids
}

func (c *Cart) clone() *Cart {
	out := &Cart{Lines: make([]Line, len(c.Lines))}
	copy(out.Lines, c.Lines)
	return out
}
