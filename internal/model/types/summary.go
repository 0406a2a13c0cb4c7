package types

type SummaryQuery struct {
	MinCount   int    `query:"min_count" validate:"min=0"`
	MinViewers int    `query:"min_viewers" validate:"min=0"`
	Q          string `query:"q" validate:"max=128"`
	Sort       string `query:"sort" validate:"max=32"`
	Order      string `query:"order" validate:"omitempty,caseinsensitiveoneof=asc desc"`
	Limit      int    `query:"limit" validate:"min=0,max=1000"`
	Expr       string `query:"expr" validate:"max=512"`
}

type TopNQuery struct {
	Metric string `query:"metric" validate:"omitempty,oneof=viewers streamers competition_index"`
	TopN   int    `query:"top_n" validate:"omitempty,min=5,max=50"`
}

type LangQuery struct {
	Lang string `query:"lang" validate:"omitempty,caseinsensitiveoneof=en ja"`
}
