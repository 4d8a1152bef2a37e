package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageURL = "https://pt.aliexpress.com/item/1005001234567890.html"

func TestExtract_LeftContentShapeHasNoImages(t *testing.T) {
	html := `<html><body>
	<div class="list--itemContentTopLeft--jv7Zzf1">
		<span class="comet-icon-starreviewfilled"></span>
		<span class="comet-icon-starreviewfilled"></span>
		<span class="comet-icon-starreviewfilled"></span>
		<span class="comet-icon-starreviewfilled"></span>
		<div class="list--itemReview--d9Z9Z5Z">  Muito bom  </div>
	</div>
	</body></html>`

	drafts, err := Extract(html, pageURL)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Muito bom", drafts[0].Text)
	assert.Equal(t, 4, drafts[0].Rating)
	assert.NotNil(t, drafts[0].Images)
	assert.Empty(t, drafts[0].Images)
}

func TestExtract_WrapperShapeReadsImages(t *testing.T) {
	html := `<html><body>
	<div class="list--itemContentTop--rXVH5KH">
		<div class="list--itemContentTopLeft--jv7Zzf1">
			<span class="comet-icon-starreviewfilled"></span>
			<span class="comet-icon-starreviewfilled"></span>
			<div class="list--itemReview--d9Z9Z5Z">Chegou rápido</div>
		</div>
		<div class="list--itemThumbnails--TtUDHhl">
			<img src="//ae01.alicdn.com/kf/abc.jpg_220x220.jpg_.webp">
			<img src="">
			<img>
			<img src="/kf/relative.png">
		</div>
	</div>
	</body></html>`

	drafts, err := Extract(html, pageURL)
	require.NoError(t, err)

	// the wrapper and its inner content node both match the item selector
	require.Len(t, drafts, 2)
	assert.Equal(t, "Chegou rápido", drafts[0].Text)
	assert.Equal(t, 2, drafts[0].Rating)
	assert.Equal(t, []string{
		"https://ae01.alicdn.com/kf/abc.jpg",
		"https://pt.aliexpress.com/kf/relative.png",
	}, drafts[0].Images)

	assert.Equal(t, "Chegou rápido", drafts[1].Text)
	assert.Empty(t, drafts[1].Images)
}

func TestExtract_WrapperWithoutContentIsSkipped(t *testing.T) {
	html := `<div class="list--itemContentTop--rXVH5KH"><p>nothing here</p></div>`

	drafts, err := Extract(html, pageURL)
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestExtract_MissingTextIsEmpty(t *testing.T) {
	html := `<div class="list--itemContentTopLeft--jv7Zzf1"><span class="comet-icon-starreviewfilled"></span></div>`

	drafts, err := Extract(html, pageURL)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "", drafts[0].Text)
	assert.Equal(t, 1, drafts[0].Rating)
}

func TestExtract_ModalScopeWins(t *testing.T) {
	html := `<html><body>
	<div class="list--itemContentTopLeft--jv7Zzf1"><div class="list--itemReview--d9Z9Z5Z">page</div></div>
	<div role="dialog">
		<div class="list--itemContentTopLeft--jv7Zzf1"><div class="list--itemReview--d9Z9Z5Z">dialog</div></div>
	</div>
	<div class="comet-v2-drawer-content">
		<div class="list--itemContentTopLeft--jv7Zzf1"><div class="list--itemReview--d9Z9Z5Z">drawer one</div></div>
		<div class="list--itemContentTopLeft--jv7Zzf1"><div class="list--itemReview--d9Z9Z5Z">drawer two</div></div>
	</div>
	</body></html>`

	drafts, err := Extract(html, pageURL)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "drawer one", drafts[0].Text)
	assert.Equal(t, "drawer two", drafts[1].Text)
}

func TestExtract_FallsBackToPageWide(t *testing.T) {
	html := `<html><body>
	<div class="review-modal"><p>empty modal</p></div>
	<div class="list--itemContentTopLeft--jv7Zzf1"><div class="list--itemReview--d9Z9Z5Z">one</div></div>
	<div class="list--itemContentTopLeft--jv7Zzf1"><div class="list--itemReview--d9Z9Z5Z">two</div></div>
	</body></html>`

	drafts, err := Extract(html, pageURL)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "one", drafts[0].Text)
	assert.Equal(t, "two", drafts[1].Text)
}

func TestExtract_NoItems(t *testing.T) {
	drafts, err := Extract("<html><body><p>no reviews</p></body></html>", pageURL)
	require.NoError(t, err)
	assert.NotNil(t, drafts)
	assert.Empty(t, drafts)
}

func TestExtract_UnparseablePageURLKeepsSources(t *testing.T) {
	html := `<div class="list--itemContentTop--rXVH5KH">
		<div class="list--itemContentTopLeft--jv7Zzf1"></div>
		<div class="list--itemThumbnails--TtUDHhl"><img src="/kf/x.jpg"></div>
	</div>`

	drafts, err := Extract(html, "://bad")
	require.NoError(t, err)
	require.NotEmpty(t, drafts)
	assert.Equal(t, []string{"/kf/x.jpg"}, drafts[0].Images)
}
