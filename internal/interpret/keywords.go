package interpret

// Category groups the trigger words that assign a transaction to it.
type Category struct {
	Name     string
	Keywords []string
	Income   bool
}

// categories is scanned in declaration order and the first hit wins, so the
// position of a keyword shared by two entries ("manutenção", "material",
// "presente") decides its category.
var categories = []Category{
	// expenses
	{Name: "Alimentação", Keywords: []string{"supermercado", "mercado", "lanche", "churrasco", "restaurante", "ifood", "rappi", "padaria", "açougue", "hortifruti", "pizza", "comida", "jantar", "almoço", "café", "bebida"}},
	{Name: "Transporte", Keywords: []string{"gasolina", "uber", "99", "estacionamento", "ipva", "seguro", "carro", "manutenção", "onibus", "metrô", "passagem", "combustível", "pedagio", "taxi", "aplicativo", "app"}},
	{Name: "Moradia", Keywords: []string{"aluguel", "condomínio", "iptu", "luz", "água", "internet", "gás", "diarista", "faxina", "energia", "net", "claro", "vivo", "oi", "tim", "conserto", "reparo"}},
	{Name: "Construção/Reforma", Keywords: []string{"construção", "reforma", "material", "pedreiro", "tinta", "cimento", "leroy", "telhanorte", "ferramenta", "obra", "ferragens"}},
	{Name: "Casa/Decoração", Keywords: []string{"casa", "decoração", "móvel", "utensílio", "cama", "mesa", "banho", "eletrodoméstico", "manutenção", "jardinagem", "ikea", "tokstok"}},
	{Name: "Saúde", Keywords: []string{"farmácia", "remédio", "médico", "consulta", "plano", "saude", "exame", "dentista", "hospital", "terapia", "psicologo"}},
	{Name: "Lazer/Entretenimento", Keywords: []string{"lazer", "cinema", "show", "bar", "festa", "viagem", "hotel", "streaming", "netflix", "spotify", "hobby", "jogo", "steam", "passeio", "presente", "ingresso", "assinatura", "disney", "hbo"}},
	{Name: "Educação", Keywords: []string{"escola", "faculdade", "curso", "livro", "material", "escolar", "udemy", "mensalidade", "papelaria"}},
	{Name: "Vestuário/Cuidados", Keywords: []string{"roupa", "sapato", "tênis", "acessório", "vestido", "calça", "beleza", "cabelereiro", "cosmético", "perfume", "barbeiro"}},
	{Name: "Dívidas/Contas", Keywords: []string{"fatura", "empréstimo", "juros", "boleto", "imposto", "taxa", "ir", "multa", "cartorio"}},
	{Name: "Pets", Keywords: []string{"pet", "ração", "veterinário", "petshop", "cachorro", "gato"}},

	// income
	{Name: "Salário", Income: true, Keywords: []string{"salário", "salario", "pagamento", "holerite"}},
	{Name: "Vendas", Income: true, Keywords: []string{"venda", "cliente", "recebimento", "comissao"}},
	{Name: "Investimentos", Income: true, Keywords: []string{"investimento", "ação", "ações", "b3", "fundo", "tesouro", "cdb", "cripto", "resgate", "dividendo", "jcp"}},
	{Name: "Outras Entradas", Income: true, Keywords: []string{"entrada", "ganhei", "recebi", "pix", "reembolso", "presente"}},
}

// cardBrands are recognized anywhere in the message.
var cardBrands = []string{"nubank", "santander", "inter", "caixa"}

var cardWords = []string{"cartão", "cartao"}

const (
	defaultCardName     = "Cartão"
	defaultIncomeLabel  = "Entrada"
	defaultExpenseLabel = "Outros"
)

type wordSet map[string]struct{}

func newWordSet(groups ...[]string) wordSet {
	s := wordSet{}
	for _, g := range groups {
		for _, w := range g {
			s[w] = struct{}{}
		}
	}
	return s
}

func (s wordSet) has(w string) bool {
	_, ok := s[w]
	return ok
}

// Lookup tables derived once from the declarations above. They are never
// written after package initialization.
var (
	keywordIndex   = buildKeywordIndex()
	incomeKeywords = buildIncomeKeywords()
	brandSet       = newWordSet(cardBrands)
	cardWordSet    = newWordSet(cardWords)
	cardStopWords  = buildCardStopWords()
)

func buildKeywordIndex() []wordSet {
	idx := make([]wordSet, len(categories))
	for i, c := range categories {
		idx[i] = newWordSet(c.Keywords)
	}
	return idx
}

func buildIncomeKeywords() wordSet {
	s := wordSet{}
	for _, c := range categories {
		if c.Income {
			for _, k := range c.Keywords {
				s[k] = struct{}{}
			}
		}
	}
	return s
}

// buildCardStopWords ends a card name capture at brands, card words and any
// category keyword, so "cartão visa mercado" names the card "Visa".
func buildCardStopWords() wordSet {
	s := newWordSet(cardBrands, cardWords)
	for _, c := range categories {
		for _, k := range c.Keywords {
			s[k] = struct{}{}
		}
	}
	return s
}

// Categories returns a copy of the keyword table in declaration order.
func Categories() []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		out[i] = Category{Name: c.Name, Income: c.Income, Keywords: append([]string(nil), c.Keywords...)}
	}
	return out
}
