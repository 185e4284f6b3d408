package assets

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/yourorg/listings-api/internal/store"
	"github.com/yourorg/listings-api/providers/medians"
	"github.com/yourorg/listings-api/providers/places"
	"github.com/yourorg/listings-api/providers/schools"
	"github.com/yourorg/listings-api/providers/transit"
)

const (
	maxCheatSheetPOIs    = 6
	maxCheatSheetMedians = 5
)

type amenityRow struct {
	Name   string
	Detail string
}

type medianRow struct {
	Year  int
	Price string
	Sales int
}

type cheatSheetView struct {
	AddressLine   string
	Suburb        string
	State         string
	Postcode      string
	Beds          int64
	Baths         int64
	Cars          int64
	LandSize      int64
	PropertyType  string
	PriceGuide    string
	Schools       []amenityRow
	Stops         []amenityRow
	POIs          []amenityRow
	MediansSuburb string
	Medians       []medianRow
	SellingPoints []string
	GeneratedAt   string
}

// BuildCheatSheetHTML renders the printable agent cheat sheet. Every
// enrichment sub-document is optional; a missing or malformed one just drops
// its section.
func BuildCheatSheetHTML(l store.Listing, e store.Enrichment) (string, error) {
	v := cheatSheetView{
		AddressLine:  l.AddressLine,
		Suburb:       l.Suburb,
		State:        l.State,
		Postcode:     l.Postcode,
		Beds:         l.Beds.Int64,
		Baths:        l.Baths.Int64,
		Cars:         l.Cars.Int64,
		LandSize:     l.LandSizeSqm.Int64,
		PropertyType: l.PropertyType.String,
		GeneratedAt:  time.Now().Format("2 Jan 2006 at 3:04 PM"),
	}
	if l.PriceGuide.Valid {
		v.PriceGuide = formatPrice(l.PriceGuide.String)
	}

	var sch schools.Result
	if unmarshalDoc(e.SchoolsJSON, &sch) {
		for _, s := range sch.Top3 {
			detail := strings.TrimSpace(s.Sector + " " + s.Level)
			if s.DistanceM > 0 {
				if detail != "" {
					detail += " • "
				}
				detail += formatDistance(s.DistanceM)
			}
			v.Schools = append(v.Schools, amenityRow{Name: s.Name, Detail: detail})
		}
	}

	var ptv transit.Result
	if unmarshalDoc(e.PTVJSON, &ptv) {
		for _, s := range ptv.Nearest {
			detail := s.StopSuburb
			if s.DistanceM > 0 {
				if detail != "" {
					detail += " • "
				}
				detail += fmt.Sprintf("%dm away", s.DistanceM)
			}
			v.Stops = append(v.Stops, amenityRow{Name: s.StopName, Detail: detail})
		}
	}

	var pois places.Result
	if unmarshalDoc(e.POIsJSON, &pois) {
		for i, p := range pois.Places {
			if i == maxCheatSheetPOIs {
				break
			}
			name := p.DisplayName.Text
			if name == "" {
				name = "Nearby Place"
			}
			kind := p.Type
			if kind == "" {
				kind = "Amenity"
			}
			v.POIs = append(v.POIs, amenityRow{Name: name, Detail: kind})
		}
	}

	var med medians.Result
	if unmarshalDoc(e.MediansJSON, &med) && len(med.House) > 0 {
		v.MediansSuburb = med.Suburb
		for i, m := range med.House {
			if i == maxCheatSheetMedians {
				break
			}
			v.Medians = append(v.Medians, medianRow{
				Year:  m.Year,
				Price: formatPrice(strconv.FormatFloat(m.MedianPrice, 'f', 0, 64)),
				Sales: m.SalesCount,
			})
		}
	}

	v.SellingPoints = sellingPoints(l, sch, ptv, pois)

	var b strings.Builder
	if err := cheatSheetTmpl.Execute(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

func unmarshalDoc(raw json.RawMessage, out any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func sellingPoints(l store.Listing, sch schools.Result, ptv transit.Result, pois places.Result) []string {
	ptype := l.PropertyType.String
	if ptype == "" {
		ptype = "property"
	}
	pts := []string{fmt.Sprintf("Modern %s in sought-after %s", ptype, l.Suburb)}
	if l.Beds.Valid && l.Beds.Int64 > 0 {
		pts = append(pts, fmt.Sprintf("Spacious %d bedroom layout ideal for families", l.Beds.Int64))
	}
	if len(sch.Top3) > 0 {
		pts = append(pts, "Close to quality education at "+sch.Top3[0].Name)
	}
	if len(ptv.Nearest) > 0 {
		pts = append(pts, "Convenient public transport with "+ptv.Nearest[0].StopName+" nearby")
	}
	if len(pois.Places) > 0 {
		pts = append(pts, "Lifestyle amenities including parks, cafes, and shopping within easy reach")
	}
	if l.LandSizeSqm.Valid && l.LandSizeSqm.Int64 > 0 {
		pts = append(pts, fmt.Sprintf("Generous %dsqm land size", l.LandSizeSqm.Int64))
	}
	return pts
}

// formatDistance shows metres under a kilometre, otherwise one-decimal km.
func formatDistance(m int) string {
	if m < 1000 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%.1fkm", float64(m)/1000)
}

// formatPrice renders a numeric price guide with thousands separators and a
// dollar sign. Non-numeric guides pass through untouched.
func formatPrice(s string) string {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return s
	}
	digits := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(digits, "-") {
		neg = true
		digits = digits[1:]
	}
	var parts []string
	for len(digits) > 3 {
		parts = append([]string{digits[len(digits)-3:]}, parts...)
		digits = digits[:len(digits)-3]
	}
	parts = append([]string{digits}, parts...)
	out := "$" + strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

var cheatSheetTmpl = template.Must(template.New("cheatsheet").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Agent Cheat Sheet - {{.AddressLine}}</title>
  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 1200px; margin: 0 auto; padding: 40px 20px; background: #f8f9fa; }
    .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 40px; border-radius: 10px; margin-bottom: 30px; }
    .header h1 { font-size: 32px; margin-bottom: 10px; }
    .header p { font-size: 18px; opacity: 0.9; }
    .section { background: white; padding: 30px; margin-bottom: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
    .section h2 { font-size: 24px; margin-bottom: 20px; color: #667eea; border-bottom: 2px solid #667eea; padding-bottom: 10px; }
    .stats { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 20px; margin: 20px 0; }
    .stat-box { background: #f8f9fa; padding: 20px; border-radius: 8px; text-align: center; }
    .stat-value { font-size: 36px; font-weight: bold; color: #667eea; }
    .stat-label { font-size: 14px; color: #666; margin-top: 5px; }
    .info-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(300px, 1fr)); gap: 15px; margin: 20px 0; }
    .info-item { display: flex; justify-content: space-between; padding: 12px; background: #f8f9fa; border-radius: 6px; }
    .info-label { font-weight: 600; color: #666; }
    .info-value { color: #333; }
    .amenity-list { display: grid; grid-template-columns: repeat(auto-fill, minmax(250px, 1fr)); gap: 15px; margin: 20px 0; }
    .amenity-item { padding: 15px; background: #f8f9fa; border-radius: 6px; border-left: 4px solid #667eea; }
    .amenity-name { font-weight: 600; margin-bottom: 5px; }
    .amenity-detail { font-size: 14px; color: #666; }
    .highlight { background: #fff3cd; padding: 20px; border-radius: 8px; border-left: 4px solid #ffc107; margin: 20px 0; }
    .highlight h3 { color: #856404; margin-bottom: 10px; }
    @media print { body { background: white; padding: 0; } .section { break-inside: avoid; } }
  </style>
</head>
<body>
  <div class="header">
    <h1>Agent Cheat Sheet</h1>
    <p>{{.AddressLine}}, {{.Suburb}} {{.State}} {{.Postcode}}</p>
  </div>

  <div class="section">
    <h2>&#127968; Property Highlights</h2>
    <div class="stats">
      {{if .Beds}}<div class="stat-box"><div class="stat-value">{{.Beds}}</div><div class="stat-label">Bedrooms</div></div>{{end}}
      {{if .Baths}}<div class="stat-box"><div class="stat-value">{{.Baths}}</div><div class="stat-label">Bathrooms</div></div>{{end}}
      {{if .Cars}}<div class="stat-box"><div class="stat-value">{{.Cars}}</div><div class="stat-label">Car Spaces</div></div>{{end}}
      {{if .LandSize}}<div class="stat-box"><div class="stat-value">{{.LandSize}}</div><div class="stat-label">Land Size (sqm)</div></div>{{end}}
    </div>
  </div>

  <div class="section">
    <h2>&#128203; Property Details</h2>
    <div class="info-grid">
      <div class="info-item">
        <span class="info-label">Address:</span>
        <span class="info-value">{{.AddressLine}}</span>
      </div>
      <div class="info-item">
        <span class="info-label">Suburb:</span>
        <span class="info-value">{{.Suburb}}, {{.State}} {{.Postcode}}</span>
      </div>
      {{if .PropertyType}}
      <div class="info-item">
        <span class="info-label">Property Type:</span>
        <span class="info-value" style="text-transform: capitalize;">{{.PropertyType}}</span>
      </div>{{end}}
      {{if .PriceGuide}}
      <div class="info-item">
        <span class="info-label">Price Guide:</span>
        <span class="info-value">{{.PriceGuide}}</span>
      </div>{{end}}
    </div>
  </div>

  {{if .Schools}}
  <div class="section">
    <h2>&#127891; Nearby Schools</h2>
    <div class="amenity-list">
      {{range .Schools}}
      <div class="amenity-item">
        <div class="amenity-name">{{.Name}}</div>
        <div class="amenity-detail">{{.Detail}}</div>
      </div>
      {{end}}
    </div>
  </div>{{end}}

  {{if .Stops}}
  <div class="section">
    <h2>&#128652; Public Transport</h2>
    <div class="amenity-list">
      {{range .Stops}}
      <div class="amenity-item">
        <div class="amenity-name">{{.Name}}</div>
        <div class="amenity-detail">{{.Detail}}</div>
      </div>
      {{end}}
    </div>
  </div>{{end}}

  {{if .POIs}}
  <div class="section">
    <h2>&#127966;&#65039; Lifestyle &amp; Amenities</h2>
    <div class="amenity-list">
      {{range .POIs}}
      <div class="amenity-item">
        <div class="amenity-name">{{.Name}}</div>
        <div class="amenity-detail" style="text-transform: capitalize;">{{.Detail}}</div>
      </div>
      {{end}}
    </div>
  </div>{{end}}

  {{if .Medians}}
  <div class="section">
    <h2>&#128176; Market Insights - {{.MediansSuburb}}</h2>
    <div class="info-grid">
      {{range .Medians}}
      <div class="info-item">
        <span class="info-label">{{.Year}}:</span>
        <span class="info-value">{{.Price}} ({{.Sales}} sales)</span>
      </div>
      {{end}}
    </div>
  </div>{{end}}

  <div class="highlight">
    <h3>&#10024; Key Selling Points</h3>
    <ul style="margin-left: 20px; margin-top: 10px;">
      {{range .SellingPoints}}<li>{{.}}</li>
      {{end}}
    </ul>
  </div>

  <div class="section" style="text-align: center; color: #666;">
    <p>Generated on {{.GeneratedAt}}</p>
    <p style="margin-top: 10px; font-size: 14px;">Agent Cheat Sheet &#8226; Confidential Property Information</p>
  </div>
</body>
</html>
`))
