package backend

// visionPrompt asks for one flat JSON object. Field names stay in Portuguese
// because the documents are; the model copes better that way.
const visionPrompt = "Você é um extrator de dados de documentos financeiros brasileiros " +
	"(boletos, comprovantes PIX, transferências TED/DOC, guias DARF/GPS/DAS e recibos).\n\n" +
	"Tarefa:\n" +
	"- Leia o documento anexado.\n" +
	"- Responda SOMENTE com um objeto JSON estrito, sem comentários e sem texto extra.\n\n" +
	"Campos do objeto (use null quando o campo não existir no documento):\n" +
	"- \"tipo\": \"boleto\", \"pix\", \"transferencia\", \"imposto\" ou \"recibo\"\n" +
	"- \"valor\": número com ponto decimal (ex.: 1234.56)\n" +
	"- \"linha_digitavel\": string com os 47 ou 48 dígitos\n" +
	"- \"codigo_barras\": string com os 44 dígitos\n" +
	"- \"vencimento\": data no formato DD/MM/AAAA (vencimento ou data da transação)\n" +
	"- \"beneficiario\": nome de quem recebe\n" +
	"- \"pagador\": nome de quem paga\n" +
	"- \"cnpj_cpf_beneficiario\": CPF ou CNPJ de quem recebe\n" +
	"- \"cpf_cnpj_pagador\": CPF ou CNPJ de quem paga\n" +
	"- \"id_transacao\": identificador end-to-end ou de autenticação\n" +
	"- \"chave_pix\": chave PIX do recebedor\n" +
	"- \"banco\": código de 3 dígitos do banco\n" +
	"- \"descricao\": descrição curta do pagamento\n\n" +
	"Não envolva a resposta em blocos de código. A saída deve começar com \"{\" e terminar com \"}\".\n"

const visionReplySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "tipo":                  {"type": ["string", "null"]},
    "valor":                 {"type": ["number", "string", "null"]},
    "linha_digitavel":       {"type": ["string", "null"]},
    "codigo_barras":         {"type": ["string", "null"]},
    "vencimento":            {"type": ["string", "null"]},
    "beneficiario":          {"type": ["string", "null"]},
    "pagador":               {"type": ["string", "null"]},
    "cnpj_cpf_beneficiario": {"type": ["string", "null"]},
    "cpf_cnpj_pagador":      {"type": ["string", "null"]},
    "id_transacao":          {"type": ["string", "null"]},
    "chave_pix":             {"type": ["string", "null"]},
    "banco":                 {"type": ["string", "number", "null"]},
    "descricao":             {"type": ["string", "null"]}
  }
}`
