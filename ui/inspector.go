package ui

import (
	"fmt"

	"github.com/pthm-cable/slits/histogram"
	"github.com/pthm-cable/slits/optics"
)

// BinInfo describes one histogram bin for the inspector.
type BinInfo struct {
	Bin          histogram.Bin
	Center       float64 // Scene x
	DisplayScale float64
	Total        int
	MaxCount     int
	Expected     float64 // Share of draws the sampler gives this bin
}

// Share returns the fraction of all particles in this bin.
func (b BinInfo) Share() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Bin.Count) / float64(b.Total)
}

// NewBinInfo gathers inspector data for key in m. Expected uses the
// sampler's acceptance weight max(0, intensity - acceptFloor).
func NewBinInfo(m *histogram.Map, key histogram.Key, acceptFloor float64) (BinInfo, bool) {
	b, ok := m.Bin(key)
	if !ok {
		return BinInfo{}, false
	}
	info := BinInfo{
		Bin:          b,
		Center:       m.Center(key),
		DisplayScale: m.Params().DisplayScale,
		Total:        m.TotalCount(),
		MaxCount:     m.MaxCount(),
	}

	var sum, own float64
	for _, other := range m.Bins() {
		w := other.Intensity - acceptFloor
		if w <= 0 {
			continue
		}
		sum += w
		if other.Key == key {
			own = w
		}
	}
	if sum > 0 {
		info.Expected = own / sum
	}
	return info, true
}

var binSections = []SectionDescriptor{
	{
		Title: "Bin",
		Fields: []FieldDescriptor{
			{Label: "Key", Widget: WidgetText, TextGetter: func(d any) string {
				return fmt.Sprintf("%d", d.(BinInfo).Bin.Key)
			}},
			{Label: "Position", Widget: WidgetText, TextGetter: func(d any) string {
				b := d.(BinInfo)
				return optics.ScaleLabel(b.Center, b.DisplayScale)
			}},
			{Label: "Intensity", Widget: WidgetText, Format: "%.3f", Getter: func(d any) float32 {
				return float32(d.(BinInfo).Bin.Intensity)
			}},
		},
	},
	{
		Title: "Counts",
		Fields: []FieldDescriptor{
			{Label: "Count", Widget: WidgetText, TextGetter: func(d any) string {
				return fmt.Sprintf("%d", d.(BinInfo).Bin.Count)
			}},
			{Label: "Observed", Widget: WidgetText, TextGetter: func(d any) string {
				return fmt.Sprintf("%.3f%%", d.(BinInfo).Share()*100)
			}},
			{Label: "Expected", Widget: WidgetText, TextGetter: func(d any) string {
				return fmt.Sprintf("%.3f%%", d.(BinInfo).Expected*100)
			}},
			{Label: "Of peak", Widget: WidgetBar, Getter: func(d any) float32 {
				b := d.(BinInfo)
				return float32(b.Bin.Count) / float32(b.MaxCount)
			}},
		},
		Visible: func(d any) bool { return d.(BinInfo).Total > 0 },
	},
}

// Inspector renders the bin inspection panel.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel for the given bin.
func (ins *Inspector) Draw(info BinInfo) int32 {
	r := ins.renderer
	pad := r.Theme.Padding

	height := pad * 2
	for _, sd := range binSections {
		height += r.SectionHeight(sd, info)
	}
	r.DrawPanel(ins.x, ins.y, ins.width, height)

	y := ins.y + pad
	for _, sd := range binSections {
		y = r.DrawSection(ins.x+pad, y, sd, info, ins.width-pad*2)
	}
	return y
}
