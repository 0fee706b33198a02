package stockcount

import (
	"github.com/ValtisD/CardiacStockTracker-sub001/feature/inventory/models"
)

// invEntry tracks how much of one inventory record remains unaccounted
// while scans are consumed against it.
type invEntry struct {
	item      models.InventoryItem
	remaining int
}

// Classify partitions a session's scans and the recorded inventory into
// matched, found and missing.
//
// Identity precedence, most to least specific: serial number, lot
// number + product, bare product. A serial match is always 1:1 and
// ignores quantity fields. Lot and bare matches accumulate: several
// records can jointly satisfy one multi-unit scan, and several scans
// can jointly drain one record. A pair is matched only when identity
// resolves and both sides are co-located.
//
// Defensive behavior: a serial resolving to more than one candidate is
// surfaced as found (ambiguous) rather than guessed at, and the second
// scan of one serial within a session is flagged as a duplicate.
func Classify(session *models.StockCountSession, scanned []models.ScannedItem, inventory []models.InventoryItem) Classification {
	_ = session // scoping of the inventory slice is the caller's concern

	entries := make([]*invEntry, 0, len(inventory))
	serialIdx := make(map[string][]*invEntry)
	poolIdx := make(map[string][]*invEntry)

	for _, item := range inventory {
		if item.Status == models.ItemMissing {
			// Already flagged by a previous reconciliation; not part of
			// the expected stock.
			continue
		}
		e := &invEntry{item: item, remaining: item.Quantity}
		entries = append(entries, e)
		if item.SerialNumber != "" {
			key := item.ProductID + "|" + item.SerialNumber
			serialIdx[key] = append(serialIdx[key], e)
		} else {
			key := item.Identity() + "@" + string(item.Location)
			poolIdx[key] = append(poolIdx[key], e)
		}
	}

	var out Classification
	seenSerial := make(map[string]struct{})

	for _, s := range scanned {
		if s.SerialNumber != "" {
			out.classifySerial(s, serialIdx, seenSerial)
			continue
		}
		out.classifyPooled(s, poolIdx)
	}

	for _, e := range entries {
		if e.remaining > 0 {
			out.Missing = append(out.Missing, MissingItem{
				InventoryItem: e.item,
				Quantity:      e.remaining,
			})
		}
	}

	return out
}

// classifySerial resolves a serial-carrying scan. Serial matches are
// 1:1 with an inventory record regardless of quantity.
func (c *Classification) classifySerial(s models.ScannedItem, serialIdx map[string][]*invEntry, seenSerial map[string]struct{}) {
	key := s.ProductID + "|" + s.SerialNumber

	if _, dup := seenSerial[key]; dup {
		// The first scan of this serial is authoritative; later scans
		// are surfaced for manual review, never resolved.
		c.Found = append(c.Found, FoundItem{
			ScannedItem:     s,
			ExistsInHome:    s.ExistsInHome,
			DuplicateSerial: true,
		})
		return
	}
	seenSerial[key] = struct{}{}

	cands := serialIdx[key]
	switch len(cands) {
	case 0:
		// A car count classifies against car stock only, so the
		// scan-time flag is the only witness of a home counterpart.
		// It is carried through here and below, never cleared.
		c.Found = append(c.Found, FoundItem{
			ScannedItem:  s,
			ExistsInHome: s.ExistsInHome,
		})
	case 1:
		e := cands[0]
		if e.item.Location == s.ScannedLocation && e.remaining > 0 {
			e.remaining = 0
			c.Matched = append(c.Matched, MatchedItem{
				ScannedItemID:    s.ID,
				InventoryItemIDs: []string{e.item.ID},
				ProductID:        s.ProductID,
				Quantity:         e.item.Quantity,
			})
		} else {
			// The flag is literal: it reports a counterpart at home, so
			// only a car scan can carry it.
			c.Found = append(c.Found, FoundItem{
				ScannedItem:  s,
				ExistsInHome: s.ExistsInHome || (s.ScannedLocation == models.LocationCar && e.item.Location == models.LocationHome),
			})
		}
	default:
		// Unique-serial invariant violated; do not guess.
		existsInHome := s.ExistsInHome
		for _, e := range cands {
			if s.ScannedLocation == models.LocationCar && e.item.Location == models.LocationHome {
				existsInHome = true
			}
		}
		c.Found = append(c.Found, FoundItem{
			ScannedItem:  s,
			ExistsInHome: existsInHome,
			Ambiguous:    true,
		})
	}
}

// classifyPooled resolves a lot or bare-product scan against the pool
// of co-located records sharing its identity. The scan matches only
// when the pool can fully account for its quantity; a partially covered
// scan stays found and leaves the pool untouched so the remainder shows
// up as missing for the operator to resolve.
func (c *Classification) classifyPooled(s models.ScannedItem, poolIdx map[string][]*invEntry) {
	key := s.Identity() + "@" + string(s.ScannedLocation)
	pool := poolIdx[key]

	total := 0
	for _, e := range pool {
		total += e.remaining
	}

	if s.Quantity > 0 && total >= s.Quantity {
		need := s.Quantity
		var ids []string
		for _, e := range pool {
			if need == 0 {
				break
			}
			if e.remaining == 0 {
				continue
			}
			take := e.remaining
			if take > need {
				take = need
			}
			e.remaining -= take
			need -= take
			ids = append(ids, e.item.ID)
		}
		c.Matched = append(c.Matched, MatchedItem{
			ScannedItemID:    s.ID,
			InventoryItemIDs: ids,
			ProductID:        s.ProductID,
			Quantity:         s.Quantity,
		})
		return
	}

	existsInHome := s.ExistsInHome
	if !existsInHome && s.ScannedLocation == models.LocationCar {
		homeKey := s.Identity() + "@" + string(models.LocationHome)
		for _, e := range poolIdx[homeKey] {
			if e.remaining > 0 {
				existsInHome = true
				break
			}
		}
	}

	c.Found = append(c.Found, FoundItem{
		ScannedItem:  s,
		ExistsInHome: existsInHome,
	})
}
