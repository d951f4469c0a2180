package domain

import (
	"strings"

	"github.com/gosimple/slug"
)

// Channel codes with built-in behaviour. Any other normalized code is treated
// as a generic marketplace.
const (
	ChannelPOS              = "pos"
	ChannelWeb              = "web"
	ChannelAmazon           = "amazon"
	ChannelAmazonFBA        = "amazon_fba"
	ChannelMercadoLibre     = "mercadolibre"
	ChannelMercadoLibreFull = "mercadolibre_full"
	ChannelWalmart          = "walmart"
)

var channelAliases = map[string]string{
	"mercado_libre":      ChannelMercadoLibre,
	"meli":               ChannelMercadoLibre,
	"mercado_libre_full": ChannelMercadoLibreFull,
	"meli_full":          ChannelMercadoLibreFull,
	"point_of_sale":      ChannelPOS,
	"ecommerce":          ChannelWeb,
}

// NormalizeChannel turns a display name such as "Mercado Libre Full" into a
// channel code.
func NormalizeChannel(raw string) string {
	code := strings.ReplaceAll(slug.Make(strings.TrimSpace(raw)), "-", "_")
	if alias, ok := channelAliases[code]; ok {
		return alias
	}
	return code
}

// IsManagedLogistics reports whether the marketplace runs its own shipping
// network and can mandate free shipping.
func IsManagedLogistics(channel string) bool {
	return strings.HasPrefix(channel, ChannelMercadoLibre)
}

// IsFullFulfillment reports whether the channel is the variant where the
// marketplace stores and ships the inventory.
func IsFullFulfillment(channel string) bool {
	return strings.HasSuffix(channel, "_full")
}

// IsDirect reports whether the channel is owned by the merchant.
func IsDirect(channel string) bool {
	return channel == ChannelPOS || channel == ChannelWeb
}
