// Package pricing is the single authority for perfume unit prices. Cart adds
// and checkout both resolve prices here so the two can never disagree.
package pricing

import (
	"fmt"

	"github.com/ronjeternate/BizarreAdventure/internal/domain"
	apperrors "github.com/ronjeternate/BizarreAdventure/pkg/errors"
)

type priceKey struct {
	volume string
	gender string
}

// Prices are whole pesos per bottle.
var priceTable = map[priceKey]int64{
	{domain.Volume30ml, domain.GenderMen}:   219,
	{domain.Volume65ml, domain.GenderMen}:   225,
	{domain.Volume30ml, domain.GenderWomen}: 225,
	{domain.Volume65ml, domain.GenderWomen}: 389,
}

// Resolve returns the unit price for a volume and gender combination.
func Resolve(volume, gender string) (int64, error) {
	price, ok := priceTable[priceKey{volume, gender}]
	if !ok {
		return 0, apperrors.InvalidInput(fmt.Sprintf("no price for volume %q gender %q", volume, gender))
	}
	return price, nil
}
