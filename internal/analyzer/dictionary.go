// Package analyzer extracts a verified monthly communication-line charge from
// OCR-derived carrier invoice text. The pipeline is pure and synchronous: one
// input string in, one well-formed result out, never an error.
package analyzer

import (
	"github.com/harunari/meisai/internal/model"
)

// DictionaryEntry maps one label keyword to a bill category.
type DictionaryEntry struct {
	Keyword  string
	Category model.BillCategory
}

// Dictionary is the immutable keyword vocabulary for one carrier's invoices.
// Entries are ordered: the first keyword contained in a label wins, so
// anchors and more specific keywords come first.
type Dictionary struct {
	Carrier model.Carrier
	Entries []DictionaryEntry
}

// Dictionaries holds every carrier vocabulary plus the generic fallback.
// Built once at process start and shared read-only across invocations.
type Dictionaries struct {
	byCarrier map[model.Carrier]*Dictionary
}

// ForCarrier returns the dictionary for the carrier, falling back to generic
// when the carrier is unknown or has no dedicated vocabulary.
func (d *Dictionaries) ForCarrier(carrier model.Carrier) *Dictionary {
	if dict, ok := d.byCarrier[carrier]; ok {
		return dict
	}
	return d.byCarrier[model.CarrierGeneric]
}

// Carriers returns every carrier with a dictionary, generic last.
func (d *Dictionaries) Carriers() []model.Carrier {
	carriers := make([]model.Carrier, 0, len(d.byCarrier))
	for _, c := range model.KnownCarriers() {
		if _, ok := d.byCarrier[c]; ok {
			carriers = append(carriers, c)
		}
	}
	carriers = append(carriers, model.CarrierGeneric)
	return carriers
}

// anchorEntries are the aggregate keywords every carrier shares. Listed first
// in each dictionary so aggregate lines never fall through to weaker matches.
func anchorEntries(totalKeywords ...string) []DictionaryEntry {
	entries := []DictionaryEntry{
		{"小計", model.CategorySubtotal},
		{"課税対象額", model.CategorySubtotal},
		{"subtotal", model.CategorySubtotal},
		{"消費税等", model.CategoryTax},
		{"消費税", model.CategoryTax},
		{"tax", model.CategoryTax},
	}
	for _, kw := range totalKeywords {
		entries = append(entries, DictionaryEntry{kw, model.CategoryTotal})
	}
	return entries
}

// deviceEntries flag handset installment charges, which are excluded from the
// communication line cost.
func deviceEntries() []DictionaryEntry {
	return []DictionaryEntry{
		{"分割支払金", model.CategoryDevice},
		{"分割金", model.CategoryDevice},
		{"割賦", model.CategoryDevice},
		{"端末", model.CategoryDevice},
		{"device", model.CategoryDevice},
	}
}

// DefaultDictionaries builds the built-in carrier vocabularies.
//
// Taxonomy (one consistent mapping per carrier): plan and base-charge keywords
// map to BASE, call charges to VOICE, data charges to DATA, handling charges
// to FEE; carrier service add-ons stay OPTION.
func DefaultDictionaries() *Dictionaries {
	softbank := &Dictionary{
		Carrier: model.CarrierSoftbank,
		Entries: concat(
			anchorEntries("ご請求金額", "ご請求額", "合計", "total"),
			deviceEntries(),
			[]DictionaryEntry{
				{"割引", model.CategoryDiscount},
				{"▲", model.CategoryDiscount},
				{"discount", model.CategoryDiscount},
				{"家族割", model.CategoryDiscount},
				{"おうち割", model.CategoryDiscount},
				{"請求書発行手数料", model.CategoryFee},
				{"基本料", model.CategoryBase},
				{"データ", model.CategoryData},
				{"通話", model.CategoryVoice},
				{"あんしん保証", model.CategoryOption},
				{"AppleCare", model.CategoryOption},
				{"オプション", model.CategoryOption},
				{"S!", model.CategoryOption},
				{"My SoftBank", model.CategoryOption},
				{"Y!mobile", model.CategoryOption},
				{"Wi-Fi", model.CategoryOption},
				{"メール", model.CategoryOption},
				{"SMS", model.CategoryOption},
			},
		),
	}

	au := &Dictionary{
		Carrier: model.CarrierAu,
		Entries: concat(
			anchorEntries("ご請求金額", "請求金額", "合計", "total"),
			deviceEntries(),
			[]DictionaryEntry{
				{"割引", model.CategoryDiscount},
				{"▲", model.CategoryDiscount},
				{"discount", model.CategoryDiscount},
				{"家族割プラス", model.CategoryDiscount},
				{"スマートバリュー", model.CategoryDiscount},
				{"請求書発行手数料", model.CategoryFee},
				{"基本料", model.CategoryBase},
				{"使い放題MAX", model.CategoryBase},
				{"ピタット", model.CategoryBase},
				{"データ", model.CategoryData},
				{"LTE NET", model.CategoryData},
				{"通話", model.CategoryVoice},
				{"AppleCare", model.CategoryOption},
				{"オプション", model.CategoryOption},
				{"メール", model.CategoryOption},
				{"SMS", model.CategoryOption},
			},
		),
	}

	docomo := &Dictionary{
		Carrier: model.CarrierDocomo,
		Entries: concat(
			anchorEntries("合計請求額", "ご請求金額", "請求金額", "合計", "total"),
			deviceEntries(),
			[]DictionaryEntry{
				{"割引", model.CategoryDiscount},
				{"▲", model.CategoryDiscount},
				{"discount", model.CategoryDiscount},
				{"dカードお支払割", model.CategoryDiscount},
				{"みんなドコモ割", model.CategoryDiscount},
				{"請求書発行手数料", model.CategoryFee},
				{"基本使用料", model.CategoryBase},
				{"基本料", model.CategoryBase},
				{"ギガホ", model.CategoryBase},
				{"ギガライト", model.CategoryBase},
				{"5Gギガホ", model.CategoryBase},
				{"データ", model.CategoryData},
				{"spモード", model.CategoryData},
				{"通話", model.CategoryVoice},
				{"オプション", model.CategoryOption},
				{"メール", model.CategoryOption},
				{"SMS", model.CategoryOption},
			},
		),
	}

	generic := &Dictionary{
		Carrier: model.CarrierGeneric,
		Entries: concat(
			anchorEntries("ご請求金額", "合計", "total", "billing", "summary of your charges"),
			deviceEntries(),
			[]DictionaryEntry{
				{"installment", model.CategoryDevice},
				{"割引", model.CategoryDiscount},
				{"▲", model.CategoryDiscount},
				{"discount", model.CategoryDiscount},
				{"rebate", model.CategoryDiscount},
				{"請求書発行手数料", model.CategoryFee},
				{"手数料", model.CategoryFee},
				{"fee", model.CategoryFee},
				{"基本料", model.CategoryBase},
				{"データ", model.CategoryData},
				{"通話", model.CategoryVoice},
				{"オプション", model.CategoryOption},
				{"サービス", model.CategoryOption},
				{"メール", model.CategoryOption},
				{"SMS", model.CategoryOption},
				{"option", model.CategoryOption},
				{"service", model.CategoryOption},
				{"charge", model.CategoryOption},
			},
		),
	}

	return &Dictionaries{
		byCarrier: map[model.Carrier]*Dictionary{
			model.CarrierSoftbank: softbank,
			model.CarrierAu:       au,
			model.CarrierDocomo:   docomo,
			model.CarrierGeneric:  generic,
		},
	}
}

func concat(groups ...[]DictionaryEntry) []DictionaryEntry {
	var out []DictionaryEntry
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
