package chatbot

import "strings"

// Intent is the coarse category the bot answers a message with.
type Intent string

const (
	IntentProductsNew       Intent = "products_new"
	IntentProductsAvailable Intent = "products_available"
	IntentProductsRice      Intent = "products_rice"
	IntentProductsVeggies   Intent = "products_vegetables"
	IntentProductsFruits    Intent = "products_fruits"
	IntentProductsCheap     Intent = "products_cheap"
	IntentFarmersNew        Intent = "farmers_new"
	IntentFarmersActive     Intent = "farmers_active"
	IntentProjects          Intent = "projects"
	IntentStats             Intent = "stats"
	IntentUpdates           Intent = "updates"
	IntentLocations         Intent = "locations"
	IntentGeneral           Intent = "general"
)

func (i Intent) String() string {
	return string(i)
}

// intentRule matches when any keyword occurs in the normalized message.
type intentRule struct {
	intent   Intent
	keywords []string
}

// intentRules are evaluated top to bottom; the first match wins, so
// "beras murah" resolves to rice, not cheap.
var intentRules = []intentRule{
	{IntentProductsNew, []string{"produk baru", "produk terbaru", "baru panen", "hasil panen terbaru"}},
	{IntentProductsAvailable, []string{"tersedia", "ready", "stok", "bisa dibeli", "siap kirim"}},
	{IntentProductsRice, []string{"beras", "padi", "gabah"}},
	{IntentProductsVeggies, []string{"sayur", "sayuran", "kangkung", "bayam", "cabai", "cabe", "tomat"}},
	{IntentProductsFruits, []string{"buah", "mangga", "pisang", "jeruk", "semangka"}},
	{IntentProductsCheap, []string{"murah", "termurah", "harga terendah", "paling hemat"}},
	{IntentFarmersNew, []string{"petani baru", "petani terbaru", "baru bergabung"}},
	{IntentFarmersActive, []string{"petani", "penjual", "siapa yang menjual"}},
	{IntentProjects, []string{"proyek", "kebun", "lahan", "musim tanam"}},
	{IntentStats, []string{"statistik", "berapa banyak", "berapa jumlah", "jumlah", "total"}},
	{IntentUpdates, []string{"update", "kabar", "perkembangan", "berita"}},
	{IntentLocations, []string{"lokasi", "dimana", "di mana", "daerah", "wilayah"}},
}

// ClassifyIntent resolves a message to an intent in a single pass over an
// ordered rule list.
func ClassifyIntent(message string) Intent {
	normalized := strings.ToLower(strings.TrimSpace(message))
	if normalized == "" {
		return IntentGeneral
	}
	for _, rule := range intentRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(normalized, keyword) {
				return rule.intent
			}
		}
	}
	return IntentGeneral
}
