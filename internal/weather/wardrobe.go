package weather

// Garment is one item of a user's wardrobe.
type Garment struct {
	ID       int    `json:"id"`
	Type     string `json:"type"`
	Color    string `json:"color"`
	Material string `json:"material"`
	Warmth   string `json:"warmth"`
}

// Wardrobe groups garments by slot.
type Wardrobe struct {
	Tops        []Garment `json:"tops"`
	Bottoms     []Garment `json:"bottoms"`
	Footwear    []Garment `json:"footwear"`
	Accessories []Garment `json:"accessories"`
}

// DemoWardrobe is served to every user; there is no wardrobe table yet.
func DemoWardrobe() Wardrobe {
	return Wardrobe{
		Tops: []Garment{
			{1, "t-shirt", "white", "cotton", "light"},
			{2, "sweater", "gray", "wool", "warm"},
			{3, "hoodie", "black", "cotton", "medium"},
			{4, "jacket", "blue", "denim", "medium"},
			{5, "coat", "brown", "wool", "heavy"},
		},
		Bottoms: []Garment{
			{1, "jeans", "blue", "denim", "medium"},
			{2, "shorts", "khaki", "cotton", "light"},
			{3, "sweatpants", "gray", "cotton", "medium"},
			{4, "slacks", "black", "polyester", "medium"},
		},
		Footwear: []Garment{
			{1, "sneakers", "white", "canvas", "medium"},
			{2, "boots", "brown", "leather", "warm"},
			{3, "sandals", "brown", "leather", "light"},
		},
		Accessories: []Garment{
			{1, "hat", "black", "wool", "warm"},
			{2, "scarf", "red", "wool", "warm"},
			{3, "gloves", "black", "leather", "warm"},
			{4, "sunglasses", "black", "plastic", "light"},
			{5, "umbrella", "blue", "nylon", "light"},
		},
	}
}
