package merge

import (
	"fmt"
	"log"

	"github.com/bodgit/snestile/asset"
	"github.com/bodgit/snestile/catalog"
)

// Catalog merges every set of parts recorded in c and writes the results
// to out.
func Catalog(c *catalog.Catalog, out string, logger *log.Logger) ([]*Result, error) {
	bases, err := c.Bases()
	if err != nil {
		return nil, err
	}
	if len(bases) == 0 {
		return nil, fmt.Errorf("merge: no parts in catalog")
	}

	results := make([]*Result, 0, len(bases))
	for _, base := range bases {
		records, err := c.Parts(base)
		if err != nil {
			return nil, err
		}

		parts := make([]*asset.Asset, 0, len(records))
		for _, r := range records {
			a, err := r.Asset()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", r.Name, err)
			}
			parts = append(parts, a)
		}

		r, err := Merge(FinalName(base), parts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", base, err)
		}
		for _, w := range r.Warnings {
			logger.Println(base+":", w)
		}

		if err := r.Asset.Write(out); err != nil {
			return nil, err
		}
		logger.Printf("Merged %d parts of %s using %d partitions and %d tiles", len(parts), base, len(r.Slots), len(r.Asset.Tiles))

		results = append(results, r)
	}

	return results, nil
}
