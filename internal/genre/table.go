// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package genre

// Genre maps a canonical genre tag to the substrings that signal it.
type Genre struct {
	Canonical string
	Synonyms  []string
}

// DefaultTable is the built-in synonym table. Order is significant: Extract
// reports genres in table order.
var DefaultTable = []Genre{
	{Canonical: "ラーメン", Synonyms: []string{"ラーメン", "らーめん", "拉麺", "中華そば", "つけ麺", "ramen", "tsukemen"}},
	{Canonical: "寿司", Synonyms: []string{"寿司", "すし", "鮨", "鮓", "sushi"}},
	{Canonical: "焼肉", Synonyms: []string{"焼肉", "焼き肉", "やきにく", "yakiniku"}},
	{Canonical: "焼き鳥", Synonyms: []string{"焼き鳥", "焼鳥", "やきとり", "yakitori"}},
	{Canonical: "うどん", Synonyms: []string{"うどん", "饂飩", "udon"}},
	{Canonical: "そば", Synonyms: []string{"蕎麦", "そば屋", "soba"}},
	{Canonical: "天ぷら", Synonyms: []string{"天ぷら", "天麩羅", "てんぷら", "tempura"}},
	{Canonical: "とんかつ", Synonyms: []string{"とんかつ", "トンカツ", "豚カツ", "tonkatsu"}},
	{Canonical: "カレー", Synonyms: []string{"カレー", "curry"}},
	{Canonical: "居酒屋", Synonyms: []string{"居酒屋", "いざかや", "izakaya"}},
	{Canonical: "カフェ", Synonyms: []string{"カフェ", "喫茶", "珈琲", "コーヒー", "cafe", "café", "coffee"}},
	{Canonical: "スイーツ", Synonyms: []string{"スイーツ", "ケーキ", "パフェ", "甘味", "dessert", "sweets"}},
	{Canonical: "イタリアン", Synonyms: []string{"イタリアン", "パスタ", "ピザ", "italian", "pasta", "pizza"}},
	{Canonical: "フレンチ", Synonyms: []string{"フレンチ", "ビストロ", "french", "bistro"}},
	{Canonical: "中華", Synonyms: []string{"中華料理", "中国料理", "餃子", "chinese", "dim sum", "gyoza"}},
	{Canonical: "韓国料理", Synonyms: []string{"韓国料理", "韓国", "サムギョプサル", "korean"}},
	{Canonical: "ハンバーガー", Synonyms: []string{"ハンバーガー", "バーガー", "burger"}},
	{Canonical: "海鮮", Synonyms: []string{"海鮮", "魚介", "seafood"}},
}
