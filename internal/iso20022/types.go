// Package iso20022 builds the core-aligned subset of ISO 20022 messages the
// bridge emits: pacs.008 (credit transfer), camt.054 (debit/credit
// notification) and camt.053 (account statement).
package iso20022

import "encoding/xml"

// Namespaces for the supported message versions.
const (
	NamespacePacs008 = "urn:iso:std:iso:20022:tech:xsd:pacs.008.001.08"
	NamespaceCamt054 = "urn:iso:std:iso:20022:tech:xsd:camt.054.001.08"
	NamespaceCamt053 = "urn:iso:std:iso:20022:tech:xsd:camt.053.001.08"
)

// Amount is a currency-qualified monetary amount. The value is always an
// exact decimal string; floating point never appears in a message body.
type Amount struct {
	Ccy   string `xml:"Ccy,attr"`
	Value string `xml:",chardata"`
}

// GroupHeader is the GrpHdr block shared by all three documents.
type GroupHeader struct {
	MsgID   string `xml:"MsgId"`
	CreDtTm string `xml:"CreDtTm"`
	NbOfTxs string `xml:"NbOfTxs,omitempty"`
}

// Party holds the party name.
type Party struct {
	Nm string `xml:"Nm"`
}

// AccountID nests the ledger address the way Acct/Id/Othr/Id does.
type AccountID struct {
	Othr OtherID `xml:"Id>Othr"`
}

type OtherID struct {
	ID string `xml:"Id"`
}

// PaymentID is the PmtId block of a credit transfer.
type PaymentID struct {
	InstrID    string `xml:"InstrId"`
	EndToEndID string `xml:"EndToEndId"`
	UETR       string `xml:"UETR"`
}

// SupplementaryData embeds the proof-of-settlement ledger details.
type SupplementaryData struct {
	Envelope SupplementaryEnvelope `xml:"Envlp"`
}

type SupplementaryEnvelope struct {
	LedgerTxHash string  `xml:"LdgrTxHash"`
	SettledAmt   *Amount `xml:"SttldAmt,omitempty"`
	FXRate       string  `xml:"FXRate,omitempty"`
}

// Pacs008Document is the FIToFICustomerCreditTransfer subset.
type Pacs008Document struct {
	XMLName xml.Name       `xml:"Document"`
	Xmlns   string         `xml:"xmlns,attr"`
	CdtTrf  CreditTransfer `xml:"FIToFICstmrCdtTrf"`
}

type CreditTransfer struct {
	GrpHdr GroupHeader          `xml:"GrpHdr"`
	TxInf  CreditTransferTxInfo `xml:"CdtTrfTxInf"`
}

type CreditTransferTxInfo struct {
	PmtID          PaymentID         `xml:"PmtId"`
	IntrBkSttlmAmt Amount            `xml:"IntrBkSttlmAmt"`
	IntrBkSttlmDt  string            `xml:"IntrBkSttlmDt"`
	Dbtr           Party             `xml:"Dbtr"`
	DbtrAcct       AccountID         `xml:"DbtrAcct"`
	Cdtr           Party             `xml:"Cdtr"`
	CdtrAcct       AccountID         `xml:"CdtrAcct"`
	SplmtryData    SupplementaryData `xml:"SplmtryData"`
}

// Camt054Document is the BankToCustomerDebitCreditNotification subset.
type Camt054Document struct {
	XMLName xml.Name     `xml:"Document"`
	Xmlns   string       `xml:"xmlns,attr"`
	Ntfctn  Notification `xml:"BkToCstmrDbtCdtNtfctn"`
}

type Notification struct {
	GrpHdr GroupHeader      `xml:"GrpHdr"`
	Item   NotificationItem `xml:"Ntfctn"`
}

type NotificationItem struct {
	ID      string  `xml:"Id"`
	Entries []Entry `xml:"Ntry"`
}

// Entry is an Ntry block used by notifications and statements.
type Entry struct {
	Amt       Amount        `xml:"Amt"`
	CdtDbtInd string        `xml:"CdtDbtInd"`
	Sts       string        `xml:"Sts"`
	Details   *EntryDetails `xml:"NtryDtls,omitempty"`
}

type EntryDetails struct {
	TxDtls TransactionDetails `xml:"TxDtls"`
}

type TransactionDetails struct {
	Refs References `xml:"Refs"`
}

type References struct {
	EndToEndID string `xml:"EndToEndId,omitempty"`
	UETR       string `xml:"UETR"`
}

// Camt053Document is the BankToCustomerStatement subset.
type Camt053Document struct {
	XMLName xml.Name          `xml:"Document"`
	Xmlns   string            `xml:"xmlns,attr"`
	Stmt    StatementDocument `xml:"BkToCstmrStmt"`
}

type StatementDocument struct {
	GrpHdr GroupHeader `xml:"GrpHdr"`
	Item   Statement   `xml:"Stmt"`
}

type Statement struct {
	ID       string    `xml:"Id"`
	Acct     AccountID `xml:"Acct"`
	FrToDt   Period    `xml:"FrToDt"`
	Balances []Balance `xml:"Bal"`
	Entries  []Entry   `xml:"Ntry"`
}

type Period struct {
	FrDtTm string `xml:"FrDtTm"`
	ToDtTm string `xml:"ToDtTm"`
}

// Balance carries OPBD (opening booked) and CLBD (closing booked) balances.
type Balance struct {
	Tp        BalanceType `xml:"Tp"`
	Amt       Amount      `xml:"Amt"`
	CdtDbtInd string      `xml:"CdtDbtInd"`
	Dt        BalanceDate `xml:"Dt"`
}

type BalanceType struct {
	Cd string `xml:"CdOrPrtry>Cd"`
}

type BalanceDate struct {
	Dt string `xml:"Dt"`
}
