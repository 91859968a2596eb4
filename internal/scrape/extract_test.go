package scrape_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pricecheck/internal/errs"
	"pricecheck/internal/scrape"
)

var listingSelectors = scrape.Selectors{
	Container: "li.s-item",
	Title:     ".s-item__title",
	Price:     ".s-item__price",
	Link:      ".s-item__link",
	Image:     ".s-item__image-img",
}

const listingHTML = `
<html><body>
<ul>
  <li class="s-item">
    <a class="s-item__link" href="/itm/Dell-XPS-13/12345678910">
      <span class="s-item__title">Dell XPS-13 Laptop 16GB</span>
    </a>
    <span class="s-item__price">$1,299.99</span>
    <img class="s-item__image-img" src="https://i.ebayimg.com/xps13.jpg"/>
  </li>
  <li class="s-item">
    <a class="s-item__link" href="https://www.ebay.com/itm/999">
      <span class="s-item__title">Another laptop</span>
    </a>
    <span class="s-item__price">$99.00</span>
  </li>
</ul>
</body></html>`

func TestFirstProduct_ExtractsFirstResult(t *testing.T) {
	t.Parallel()

	p, err := scrape.FirstProduct(listingHTML, listingSelectors, "https://www.ebay.com/sch/i.html?_nkw=xps", "ebay.com")
	require.NoError(t, err)

	require.Equal(t, "Dell XPS-13 Laptop 16GB", p.Title)
	require.Equal(t, "USD", p.Currency)
	require.Equal(t, "1299.99", p.Price.String())
	// Relative links resolve against the search URL's scheme+host.
	require.Equal(t, "https://www.ebay.com/itm/Dell-XPS-13/12345678910", p.Link)
	require.Equal(t, "https://i.ebayimg.com/xps13.jpg", p.Image)
	// Search results are unscored until the matcher runs.
	require.Nil(t, p.MatchConfidence)
}

func TestFirstProduct_LazyLoadedImage(t *testing.T) {
	t.Parallel()

	html := `
<div class="prd">
  <a class="core" href="/item.html"><div class="name">Infinix Hot 40</div></a>
  <div class="prc">₦150,000</div>
  <img class="img" src="data:image/svg+xml;base64,xx" data-src="https://ng.jumia.is/hot40.jpg"/>
</div>`
	sel := scrape.Selectors{Container: "div.prd", Title: ".name", Price: ".prc", Link: "a.core", Image: "img.img"}

	p, err := scrape.FirstProduct(html, sel, "https://www.jumia.com.ng/catalog/?q=infinix", "jumia")
	require.NoError(t, err)
	require.Equal(t, "NGN", p.Currency)
	require.Equal(t, "150000", p.Price.String())
	require.Equal(t, "https://ng.jumia.is/hot40.jpg", p.Image)
	require.Equal(t, "https://www.jumia.com.ng/item.html", p.Link)
}

func TestFirstProduct_MissingPieces(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
	}{
		{name: "no container", html: `<div>nothing here</div>`},
		{name: "no title", html: `<li class="s-item"><a class="s-item__link" href="/x"></a><span class="s-item__price">$5</span></li>`},
		{name: "no price", html: `<li class="s-item"><a class="s-item__link" href="/x"><span class="s-item__title">T</span></a></li>`},
		{name: "no link", html: `<li class="s-item"><span class="s-item__title">T</span><span class="s-item__price">$5</span></li>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := scrape.FirstProduct(tt.html, listingSelectors, "https://www.ebay.com/sch", "")
			require.Error(t, err)
			require.Equal(t, errs.KindMissingField, errs.KindOf(err))
		})
	}
}

func TestFirstProduct_UnparseablePrice(t *testing.T) {
	t.Parallel()

	html := `<li class="s-item"><a class="s-item__link" href="/x"><span class="s-item__title">T</span></a><span class="s-item__price">See listing</span></li>`
	_, err := scrape.FirstProduct(html, listingSelectors, "https://www.ebay.com/sch", "")
	require.Error(t, err)
	require.Equal(t, errs.KindParse, errs.KindOf(err))
}
