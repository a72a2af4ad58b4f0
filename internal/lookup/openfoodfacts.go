// ABOUTME: Open Food Facts HTTP client implementing Provider.
// ABOUTME: Parses per-100g nutriments and converts grams to the profile's mg/µg units.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/nutrition/internal/models"
)

// SourceOpenFoodFacts tags foods created from Open Food Facts data.
const SourceOpenFoodFacts = "openfoodfacts"

const (
	kJPerKcal = 4.184
	mgPerGram = 1000.0
	ugPerGram = 1_000_000.0
)

// OpenFoodFacts queries the Open Food Facts product and search APIs.
type OpenFoodFacts struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

// NewOpenFoodFacts returns a client for baseURL with a per-request timeout.
func NewOpenFoodFacts(baseURL string, timeout time.Duration) *OpenFoodFacts {
	return &OpenFoodFacts{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: "nutrition/1.0 (+https://github.com/harperreed/nutrition)",
		Client:    &http.Client{Timeout: timeout},
	}
}

// Name implements Provider.
func (o *OpenFoodFacts) Name() string {
	return SourceOpenFoodFacts
}

// offProduct is the subset of an Open Food Facts product record we read.
type offProduct struct {
	Code          string         `json:"code"`
	ProductName   string         `json:"product_name"`
	ProductNameEn string         `json:"product_name_en"`
	GenericName   string         `json:"generic_name"`
	Brands        string         `json:"brands"`
	Categories    string         `json:"categories"`
	Nutriments    map[string]any `json:"nutriments"`
}

type offProductResponse struct {
	Status  int        `json:"status"`
	Code    string     `json:"code"`
	Product offProduct `json:"product"`
}

type offSearchResponse struct {
	Count    int          `json:"count"`
	Products []offProduct `json:"products"`
}

// ByBarcode implements Provider using GET /api/v2/product/{code}.json.
func (o *OpenFoodFacts) ByBarcode(ctx context.Context, barcode string) (*Result, bool, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, false, nil
	}

	endpoint := fmt.Sprintf("%s/api/v2/product/%s.json", o.BaseURL, url.PathEscape(barcode))
	var resp offProductResponse
	found, err := o.getJSON(ctx, endpoint, &resp)
	if err != nil || !found {
		return nil, false, err
	}
	if resp.Status != 1 {
		return nil, false, nil
	}
	if resp.Product.Code == "" {
		resp.Product.Code = barcode
	}
	return resp.Product.result(), true, nil
}

// ByName implements Provider using the legacy full-text search endpoint and
// taking the best-ranked product.
func (o *OpenFoodFacts) ByName(ctx context.Context, name string) (*Result, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, nil
	}

	q := url.Values{}
	q.Set("search_terms", name)
	q.Set("search_simple", "1")
	q.Set("action", "process")
	q.Set("json", "1")
	q.Set("page_size", "1")
	endpoint := o.BaseURL + "/cgi/search.pl?" + q.Encode()

	var resp offSearchResponse
	found, err := o.getJSON(ctx, endpoint, &resp)
	if err != nil || !found {
		return nil, false, err
	}
	if len(resp.Products) == 0 {
		return nil, false, nil
	}
	return resp.Products[0].result(), true, nil
}

// getJSON decodes a 200 response into out. A 404 is reported as not found.
func (o *OpenFoodFacts) getJSON(ctx context.Context, endpoint string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", o.UserAgent)
	req.Header.Set("Accept", "application/json")

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("query open food facts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("open food facts returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode open food facts response: %w", err)
	}
	return true, nil
}

// name returns the best available product name.
func (p *offProduct) name() string {
	for _, n := range []string{p.ProductName, p.ProductNameEn, p.GenericName} {
		if s := strings.TrimSpace(n); s != "" {
			return s
		}
	}
	return ""
}

func (p *offProduct) result() *Result {
	per100g, hasEnergy := parseNutriments(p.Nutriments)
	return &Result{
		Name:     p.name(),
		Brand:    firstListItem(p.Brands),
		Barcode:  p.Code,
		Category: strings.ToLower(firstListItem(p.Categories)),
		Per100g:  per100g,
		Source:   SourceOpenFoodFacts,
		NoEnergy: !hasEnergy,
	}
}

// parseNutriments maps OFF per-100g nutriments (grams) onto a profile and
// reports whether an energy value was present. Missing or implausible values
// are 0.
func parseNutriments(n map[string]any) (models.NutrientProfile, bool) {
	grams := func(key string) float64 {
		v, ok := extractFloat(n, key)
		if !ok || v < 0 {
			return 0
		}
		return v
	}

	kcal, ok := extractFloat(n, "energy-kcal_100g")
	if !ok {
		if kj, okKJ := extractFloat(n, "energy-kj_100g"); okKJ {
			kcal, ok = kj/kJPerKcal, true
		} else if kj, okE := extractFloat(n, "energy_100g"); okE {
			kcal, ok = kj/kJPerKcal, true
		}
	}
	if !ok || kcal < 0 {
		kcal, ok = 0, false
	}

	return models.NutrientProfile{
		Calories:  kcal,
		Protein:   grams("proteins_100g"),
		Carbs:     grams("carbohydrates_100g"),
		Fat:       grams("fat_100g"),
		Fiber:     grams("fiber_100g"),
		Sodium:    grams("sodium_100g") * mgPerGram,
		Potassium: grams("potassium_100g") * mgPerGram,
		Calcium:   grams("calcium_100g") * mgPerGram,
		Iron:      grams("iron_100g") * mgPerGram,
		VitaminC:  grams("vitamin-c_100g") * mgPerGram,
		VitaminD:  grams("vitamin-d_100g") * ugPerGram,
	}, ok
}

// extractFloat coerces a nutriments value, which OFF sends as either a
// number or a string, to a finite float64.
func extractFloat(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func firstListItem(s string) string {
	first, _, _ := strings.Cut(s, ",")
	return strings.TrimSpace(first)
}
