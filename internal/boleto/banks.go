package boleto

var bankNames = map[string]string{
	"001": "Banco do Brasil",
	"033": "Santander",
	"077": "Banco Inter",
	"104": "Caixa Econômica Federal",
	"237": "Bradesco",
	"260": "Nubank",
	"290": "PagBank",
	"323": "Mercado Pago",
	"336": "C6 Bank",
	"341": "Itaú",
	"380": "PicPay",
	"399": "HSBC",
	"422": "Safra",
	"745": "Citibank",
	"748": "Sicredi",
	"756": "Sicoob",
}

// BankName returns the bank for a three-digit FEBRABAN code, or "" if unknown.
func BankName(code string) string {
	return bankNames[code]
}
