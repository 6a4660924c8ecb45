package services

// InvestmentTip is an entry of the static investment catalogue.
type InvestmentTip struct {
	ID       string `json:"id"`
	Title    string `json:"titulo"`
	Desc     string `json:"descricao"`
	Category string `json:"categoria"`
	Risk     string `json:"risco"`
}

var investmentTips = []InvestmentTip{
	{
		ID:       "1",
		Title:    "Tesouro Selic",
		Desc:     "Investimento de baixo risco atrelado à taxa Selic. Ideal para reserva de emergência e objetivos de curto prazo.",
		Category: "Renda Fixa",
		Risk:     "Baixo",
	},
	{
		ID:       "2",
		Title:    "Fundos de Índice (ETFs)",
		Desc:     "Diversificação automática com baixo custo. Acompanha índices como Ibovespa ou S&P 500.",
		Category: "Renda Variável",
		Risk:     "Médio",
	},
	{
		ID:       "3",
		Title:    "CDB com liquidez diária",
		Desc:     "Certificado de Depósito Bancário com possibilidade de resgate a qualquer momento. Protegido pelo FGC.",
		Category: "Renda Fixa",
		Risk:     "Baixo",
	},
	{
		ID:       "4",
		Title:    "Fundos Imobiliários (FIIs)",
		Desc:     "Invista em imóveis sem precisar comprar um. Receba rendimentos mensais e aproveite a valorização.",
		Category: "Renda Variável",
		Risk:     "Médio-Alto",
	},
	{
		ID:       "5",
		Title:    "LCI/LCA",
		Desc:     "Letras de crédito isentas de IR para pessoa física. Boa opção para médio prazo.",
		Category: "Renda Fixa",
		Risk:     "Baixo",
	},
	{
		ID:       "6",
		Title:    "Ações de Dividendos",
		Desc:     "Empresas sólidas que distribuem lucros regularmente. Estratégia de longo prazo com renda passiva.",
		Category: "Renda Variável",
		Risk:     "Médio-Alto",
	},
}

// InvestmentTips returns a copy of the catalogue.
func InvestmentTips() []InvestmentTip {
	out := make([]InvestmentTip, len(investmentTips))
	copy(out, investmentTips)
	return out
}
