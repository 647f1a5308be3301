package models

// ChartSpec is a declarative bar chart description. It carries bindings,
// rows and display flags only; rendering is left to the client.
type ChartSpec struct {
	Kind           string     `json:"kind"`
	Orientation    string     `json:"orientation"`
	X              string     `json:"x"`
	Y              string     `json:"y"`
	Color          string     `json:"color,omitempty"`
	BarMode        string     `json:"barmode,omitempty"`
	Title          string     `json:"title"`
	TextAuto       bool       `json:"text_auto"`
	Rows           []ChartRow `json:"rows"`
	XAxis          Axis       `json:"xaxis"`
	YAxis          Axis       `json:"yaxis"`
	PlotBackground string     `json:"plot_bgcolor,omitempty"`
	Margin         *Margin    `json:"margin,omitempty"`
}

// ChartRow is one bar. X and Y carry either a category or a value depending on
// the chart orientation; Text is set when labels are preformatted.
type ChartRow struct {
	X     any    `json:"x"`
	Y     any    `json:"y"`
	Color string `json:"color,omitempty"`
	Text  string `json:"text,omitempty"`
}

type Axis struct {
	ShowTitle      bool   `json:"show_title"`
	ShowGrid       bool   `json:"show_grid"`
	ShowTickLabels bool   `json:"show_tick_labels"`
	CategoryOrder  string `json:"category_order,omitempty"`
	Ticks          string `json:"ticks,omitempty"`
}

type Margin struct {
	Top    int `json:"t"`
	Bottom int `json:"b"`
	Left   int `json:"l"`
	Right  int `json:"r"`
}

// DefaultAxis is an axis with every element visible.
func DefaultAxis() Axis {
	return Axis{ShowTitle: true, ShowGrid: true, ShowTickLabels: true}
}
