package dlsite

import (
	"context"
	"fmt"
	"strings"

	"github.com/sagan/erolauncher/scraper"
)

// ApiWork is the product info api record of one work. The api serves a json
// object keyed by work id; only the baseline fields are consumed.
type ApiWork struct {
	WorkName          string `json:"work_name,omitempty"`
	MakerName         string `json:"maker_name,omitempty"`
	WorkImage         string `json:"work_image,omitempty"`
	RegistDate        string `json:"regist_date,omitempty"`
	AgeCategoryString string `json:"age_category_string,omitempty"`
}

// fetchApi gets the baseline work record from the product info (ajax) api.
// The work id missing from the response object => scraper.ErrNotFound.
func (ds *Scraper) fetchApi(ctx context.Context, workId string) (*ApiWork, error) {
	apiUrl := fmt.Sprintf("%s/%s/product/info/ajax?product_id=%s", ds.baseUrl, workSite(workId), workId)
	var works map[string]*ApiWork
	if err := ds.dispatcher.FetchJson(ctx, apiUrl, &works); err != nil {
		return nil, fmt.Errorf("failed to fetch product info api: %w", err)
	}
	work := works[workId]
	if work == nil {
		// the api echos ids back in their canonical case
		for key, value := range works {
			if value != nil && strings.EqualFold(key, workId) {
				work = value
				break
			}
		}
	}
	if work == nil {
		return nil, fmt.Errorf("%w: api has no entry of %s", scraper.ErrNotFound, workId)
	}
	work.WorkImage = ensureAbsolute(work.WorkImage)
	return work, nil
}
