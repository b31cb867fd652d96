package prompt

// Built-in prompt IDs.
const (
	IDToneRewrite      = "tone.rewrite"
	IDStatementExtract = "extraction.financial_statement"

	SchemaStatement = "financial_statement"
)

func registerBuiltins(r *Registry) {
	_ = r.Register(&Template{
		ID:          IDToneRewrite,
		Name:        "事業計画書リライト",
		Category:    "tone",
		Description: "補助金事業計画書の本文を、事実と数値を変えずに自然な文体へ書き直す",
		SystemPrompt: `あなたは中小企業の経営者に代わって補助金の事業計画書を仕上げる編集者です。
与えられた本文を、内容と数値を一切変えずに、読み手に伝わる自然な日本語へ書き直してください。

守るべきルール:
- 金額・割合・年数などの数値、固有名詞、事実関係は変更しない
- 【 】で囲まれた見出しはそのままの位置・表記で残す
- 「さらに」「また」「これにより」などの接続詞の繰り返しを減らす
- 文の長さに変化をつけ、同じ語尾の連続を避ける
- 箇条書き記号や装飾記号は使わない
- 出力は書き直した本文のみとし、説明や前置きを付けない`,
		Version: "1.0",
	})

	_ = r.Register(&Template{
		ID:          IDStatementExtract,
		Name:        "決算書フィールド抽出",
		Category:    "extraction",
		Description: "決算書テキストから射影計算に必要な科目を抽出する",
		SystemPrompt: `あなたは日本の中小企業の決算書を読む財務アナリストです。
与えられたテキストから指定の科目を抽出し、JSONのみで回答してください。

ルール:
- 金額は円単位の整数とし、千円単位表記は円に換算する
- 見つからない科目は 0 とする
- 直近3期分が読み取れる場合は古い順に並べる
- JSON以外の文字を出力しない`,
		UserPromptTmpl: `以下の決算書テキストから売上高、売上総利益、営業利益、人件費、減価償却費、給与支給総額を抽出してください。

{{.StatementText}}`,
		SchemaID: SchemaStatement,
		Version:  "1.0",
	})

	_ = r.RegisterSchema(&Schema{
		ID:   SchemaStatement,
		Name: "決算書抽出結果",
		JSONSchema: `{
  "type": "object",
  "properties": {
    "revenue": {"type": "array", "items": {"type": "integer"}},
    "gross_profit": {"type": "array", "items": {"type": "integer"}},
    "operating_profit": {"type": "array", "items": {"type": "integer"}},
    "labor_cost": {"type": "integer"},
    "depreciation": {"type": "integer"},
    "total_salary": {"type": "integer"}
  },
  "required": ["revenue", "operating_profit"]
}`,
	})
}
