package cfi

// Attribute is the decode table for one of the four attribute positions.
// An empty Values map means the position is always "X" (not applicable).
type Attribute struct {
	Name   string
	Values map[byte]string
}

type group struct {
	name  string
	attrs [4]Attribute
}

type category struct {
	name   string
	groups map[byte]group
}

// attr builds an Attribute from alternating letter/meaning pairs.
func attr(name string, pairs ...string) Attribute {
	a := Attribute{Name: name, Values: make(map[byte]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		a.Values[pairs[i][0]] = pairs[i+1]
	}
	return a
}

var na = Attribute{Name: "Not applicable"}

// Shared attribute tables. The same letter decodes differently depending on
// which table a (category, group) pair selects.
var (
	votingRight = attr("Voting right",
		"V", "Voting", "N", "Non-voting", "R", "Restricted voting", "E", "Enhanced voting")
	ownershipRestrictions = attr("Ownership/transfer/sales restrictions",
		"T", "Restrictions", "U", "Free (unrestricted)")
	paymentStatus = attr("Payment status",
		"O", "Nil paid", "P", "Partly paid", "F", "Fully paid")
	form = attr("Form",
		"B", "Bearer", "R", "Registered", "N", "Bearer/registered", "M", "Others (miscellaneous)")
	preferredRedemption = attr("Redemption",
		"R", "Redeemable", "E", "Extendible", "T", "Redeemable/extendible", "G", "Exchangeable",
		"A", "Redeemable/exchangeable/extendible", "C", "Redeemable/exchangeable", "N", "Perpetual")
	equityIncome = attr("Income",
		"F", "Fixed rate income", "C", "Cumulative, fixed rate income", "P", "Participating income",
		"Q", "Cumulative, participating income", "A", "Adjustable/variable rate income",
		"N", "Normal rate income", "U", "Auction rate income", "D", "Dividends")
	drDependency = attr("Instrument dependency",
		"S", "Common/ordinary shares", "P", "Preferred/preference shares",
		"C", "Common/ordinary convertible shares", "F", "Preferred/preference convertible shares",
		"L", "Limited partnership units", "M", "Others (miscellaneous)")
	drRedemption = attr("Redemption/conversion of the underlying assets",
		"R", "Redeemable", "N", "Perpetual", "B", "Convertible", "D", "Convertible/redeemable")
	structuredUnderlying = attr("Underlying assets",
		"B", "Baskets", "S", "Equities", "D", "Debt instruments/interest rates", "G", "Derivatives",
		"T", "Commodities", "C", "Currencies", "I", "Indices", "N", "Interest rates", "M", "Others (miscellaneous)")

	fundType = attr("Closed/open-end",
		"O", "Open-end", "C", "Closed-end", "M", "Others (miscellaneous)")
	distributionPolicy = attr("Distribution policy",
		"I", "Income funds", "G", "Accumulation funds", "J", "Mixed funds")
	fundAssets = attr("Assets",
		"R", "Real estate", "S", "Securities", "M", "Mixed-general", "C", "Commodities", "D", "Derivatives")
	fundSecurityType = attr("Security type and investor restrictions",
		"S", "Shares", "Q", "Shares for QI", "U", "Units", "Y", "Units for QI")

	interestType = attr("Type of interest or cash payment",
		"F", "Fixed rate", "Z", "Zero rate/discounted", "V", "Variable", "C", "Cash payment", "K", "Payment in kind")
	guarantee = attr("Guarantee or ranking",
		"T", "Government/state guarantee", "G", "Joint guarantee", "S", "Secured", "U", "Unsecured/unguaranteed",
		"P", "Negative pledge", "N", "Senior", "O", "Senior subordinated", "Q", "Junior", "J", "Junior subordinated",
		"C", "Supranational")
	redemption = attr("Redemption/reimbursement",
		"F", "Fixed maturity", "G", "Fixed maturity with call feature", "C", "Fixed maturity with put feature",
		"D", "Fixed maturity with put and call", "A", "Amortization plan", "B", "Amortization plan with call feature",
		"T", "Amortization plan with put feature", "L", "Amortization plan with put and call", "P", "Perpetual",
		"Q", "Perpetual with call feature", "R", "Perpetual with put feature", "E", "Extendible")
	debtDistribution = attr("Distribution",
		"F", "Fixed interest payments", "D", "Dividend payments", "V", "Variable interest payments",
		"Y", "No payments", "M", "Others (miscellaneous)")

	warrantUnderlying = attr("Underlying assets",
		"B", "Baskets", "S", "Equities", "D", "Debt instruments/interest rates", "T", "Commodities",
		"C", "Currencies", "I", "Indices", "M", "Others (miscellaneous)")
	callPut = attr("Call/put",
		"C", "Call", "P", "Put", "B", "Call and put")
	exerciseStyle = attr("Exercise option style",
		"A", "American", "E", "European", "B", "Bermudan", "M", "Others (miscellaneous)")

	optionExercise = attr("Exercise option style",
		"E", "European", "A", "American", "B", "Bermudan")
	derivativeUnderlying = attr("Underlying assets",
		"B", "Baskets", "S", "Stock-equities", "D", "Debt instruments", "T", "Commodities", "F", "Futures",
		"O", "Options", "W", "Swaps", "C", "Currencies", "I", "Indices", "N", "Interest rates", "M", "Others (miscellaneous)")
	optionDelivery = attr("Delivery",
		"P", "Physical", "C", "Cash", "N", "Non-deliverable", "E", "Elect at exercise")
	standardization = attr("Standardized/non-standardized",
		"S", "Standardized", "N", "Non-standardized")

	futureDelivery = attr("Delivery",
		"P", "Physical", "C", "Cash", "N", "Non-deliverable")
	commodityClass = attr("Underlying assets",
		"E", "Extraction resources", "A", "Agriculture", "I", "Industrial products", "S", "Services",
		"N", "Environmental", "P", "Polypropylene products", "H", "Generated resources", "M", "Others (miscellaneous)")
	commodityUnderlying = attr("Underlying assets",
		"J", "Energy", "K", "Metals", "A", "Agriculture", "N", "Environmental", "G", "Freight",
		"P", "Polypropylene products", "S", "Fertilizer", "T", "Paper", "I", "Index", "Q", "Multi-commodity",
		"M", "Others (miscellaneous)")

	swapDelivery = attr("Delivery",
		"C", "Cash", "P", "Physical", "E", "Elect at settlement")
	optionStyleType = attr("Option style and type",
		"A", "European-call", "B", "American-call", "C", "Bermudan-call", "D", "European-put",
		"E", "American-put", "F", "Bermudan-put", "G", "European-chooser", "H", "American-chooser",
		"I", "Bermudan-chooser")
	valuationMethod = attr("Valuation method or trigger",
		"V", "Vanilla", "A", "Asian", "D", "Digital (binary)", "B", "Barrier", "G", "Digital barrier",
		"L", "Lookback", "P", "Other path dependent", "M", "Others (miscellaneous)")
	forwardReturn = attr("Return or payout trigger",
		"C", "Contract for difference (CFD)", "S", "Spread-bet", "F", "Forward price of underlying instrument",
		"R", "Rolling spot")
	cashPhysical = attr("Delivery",
		"C", "Cash", "P", "Physical")
)

func groupOf(name string, a0, a1, a2, a3 Attribute) group {
	return group{name: name, attrs: [4]Attribute{a0, a1, a2, a3}}
}

var categories = map[byte]category{
	'E': {name: "Equities", groups: map[byte]group{
		'S': groupOf("Common/ordinary shares", votingRight, ownershipRestrictions, paymentStatus, form),
		'P': groupOf("Preferred/preference shares", votingRight, preferredRedemption, equityIncome, form),
		'C': groupOf("Common/ordinary convertible shares", votingRight, ownershipRestrictions, paymentStatus, form),
		'F': groupOf("Preferred/preference convertible shares", votingRight, preferredRedemption, equityIncome, form),
		'L': groupOf("Limited partnership units", votingRight, ownershipRestrictions, paymentStatus, form),
		'D': groupOf("Depositary receipts on equities", drDependency, drRedemption, equityIncome, form),
		'Y': groupOf("Structured instruments (participation)",
			attr("Type", "A", "Tracker certificate", "B", "Outperformance certificate", "C", "Bonus certificate",
				"D", "Outperformance bonus certificate", "E", "Twin-win-certificate", "M", "Others (miscellaneous)"),
			attr("Distribution", "D", "Dividend payments", "Y", "No payments", "M", "Others (miscellaneous)"),
			attr("Repayment", "F", "Cash repayment", "V", "Physical repayment", "E", "Elect at settlement",
				"M", "Others (miscellaneous)"),
			structuredUnderlying),
		'M': groupOf("Others (miscellaneous)", na, na, na, form),
	}},
	'C': {name: "Collective investment vehicles", groups: map[byte]group{
		'I': groupOf("Standard (vanilla) investment funds/mutual funds", fundType, distributionPolicy, fundAssets, fundSecurityType),
		'H': groupOf("Hedge funds",
			attr("Investment strategy", "D", "Directional", "R", "Relative value", "S", "Security selection",
				"E", "Event-driven", "A", "Arbitrage", "N", "Multi-strategy", "L", "Asset-based lending",
				"M", "Others (miscellaneous)"),
			na, na, na),
		'B': groupOf("Real estate investment trusts (REITs)", fundType, distributionPolicy, na, fundSecurityType),
		'E': groupOf("Exchange-traded funds (ETFs)", fundType, distributionPolicy, fundAssets,
			attr("Security type", "S", "Shares", "U", "Units")),
		'S': groupOf("Pension funds", fundType,
			attr("Strategy/style", "B", "Balanced/conservative", "G", "Growth", "L", "Life style", "M", "Others (miscellaneous)"),
			attr("Type", "R", "Defined benefit", "B", "Defined contribution", "M", "Others (miscellaneous)"),
			attr("Security type", "U", "Units", "S", "Shares")),
		'F': groupOf("Funds of funds", fundType, distributionPolicy,
			attr("Type of funds", "I", "Standard (vanilla) investment funds", "H", "Hedge funds", "B", "REITs",
				"E", "ETFs", "P", "Private equity funds", "M", "Others (miscellaneous)"),
			fundSecurityType),
		'P': groupOf("Private equity funds", fundType, distributionPolicy, fundAssets, fundSecurityType),
		'M': groupOf("Others (miscellaneous)", na, na, na, fundSecurityType),
	}},
	'D': {name: "Debt instruments", groups: map[byte]group{
		'B': groupOf("Bonds", interestType, guarantee, redemption, form),
		'C': groupOf("Convertible bonds", interestType, guarantee, redemption, form),
		'W': groupOf("Bonds with warrants attached", interestType, guarantee, redemption, form),
		'T': groupOf("Medium-term notes", interestType, guarantee, redemption, form),
		'Y': groupOf("Money market instruments", interestType, guarantee, na, form),
		'S': groupOf("Structured instruments (capital protection)",
			attr("Type", "A", "Capital protection certificate with participation",
				"B", "Capital protection convertible certificate", "C", "Barrier capital protection certificate",
				"D", "Capital protection certificate with coupons", "M", "Others (miscellaneous)"),
			debtDistribution,
			attr("Repayment", "F", "Fixed cash repayment", "V", "Variable cash repayment", "M", "Others (miscellaneous)"),
			structuredUnderlying),
		'E': groupOf("Structured instruments (without capital protection)",
			attr("Type", "A", "Discount certificate", "B", "Barrier discount certificate", "C", "Reverse convertible",
				"D", "Barrier reverse convertible", "E", "Express certificate", "M", "Others (miscellaneous)"),
			debtDistribution,
			attr("Repayment", "R", "Repayment in cash", "S", "Repayment in assets", "C", "Repayment in assets and cash",
				"T", "Repayment in assets or cash", "M", "Others (miscellaneous)"),
			structuredUnderlying),
		'G': groupOf("Mortgage-backed securities", interestType, guarantee, redemption, form),
		'A': groupOf("Asset-backed securities", interestType, guarantee, redemption, form),
		'N': groupOf("Municipal bonds", interestType, guarantee, redemption, form),
		'D': groupOf("Depositary receipts on debt instruments",
			attr("Instrument dependency", "B", "Bonds", "C", "Convertible bonds", "W", "Bonds with warrants attached",
				"T", "Medium-term notes", "Y", "Money market instruments", "G", "Mortgage-backed securities",
				"A", "Asset-backed securities", "N", "Municipal bonds", "M", "Others (miscellaneous)"),
			interestType, guarantee, redemption),
		'M': groupOf("Others (miscellaneous)",
			attr("Type", "B", "Bank loan", "P", "Promissory note", "M", "Others (miscellaneous)"),
			na, na, form),
	}},
	'R': {name: "Entitlements (rights)", groups: map[byte]group{
		'A': groupOf("Allotment (bonus) rights", na, na, na, form),
		'S': groupOf("Subscription rights",
			attr("Assets", "S", "Common/ordinary shares", "P", "Preferred/preference shares",
				"C", "Common/ordinary convertible shares", "F", "Preferred/preference convertible shares",
				"B", "Bonds", "I", "Combined instruments", "M", "Others (miscellaneous)"),
			na, na, form),
		'P': groupOf("Purchase rights",
			attr("Assets", "S", "Common/ordinary shares", "P", "Preferred/preference shares",
				"C", "Common/ordinary convertible shares", "F", "Preferred/preference convertible shares",
				"B", "Bonds", "I", "Combined instruments", "M", "Others (miscellaneous)"),
			na, na, form),
		'W': groupOf("Warrants", warrantUnderlying,
			attr("Type", "T", "Traditional warrants", "N", "Naked warrants", "C", "Covered warrants"),
			callPut, exerciseStyle),
		'F': groupOf("Mini-future certificates, constant leverage certificates", warrantUnderlying,
			attr("Barrier dependency type", "T", "Barrier underlying based", "N", "Barrier instrument based",
				"M", "Others (miscellaneous)"),
			attr("Long/short", "C", "Long", "P", "Short", "M", "Others (miscellaneous)"),
			exerciseStyle),
		'D': groupOf("Depositary receipts on entitlements",
			attr("Instrument dependency", "A", "Allotment (bonus) rights", "S", "Subscription rights",
				"P", "Purchase rights", "W", "Warrants", "M", "Others (miscellaneous)"),
			na, na, form),
		'M': groupOf("Others (miscellaneous)", na, na, na, na),
	}},
	'O': {name: "Listed options", groups: map[byte]group{
		'C': groupOf("Call options", optionExercise, derivativeUnderlying, optionDelivery, standardization),
		'P': groupOf("Put options", optionExercise, derivativeUnderlying, optionDelivery, standardization),
		'M': groupOf("Others (miscellaneous)", na, na, na, na),
	}},
	'F': {name: "Futures", groups: map[byte]group{
		'F': groupOf("Financial futures",
			attr("Underlying assets", "B", "Baskets", "S", "Stock-equities", "D", "Debt instruments",
				"C", "Currencies", "I", "Indices", "O", "Options", "F", "Futures", "W", "Swaps",
				"N", "Interest rates", "V", "Stock dividend", "M", "Others (miscellaneous)"),
			futureDelivery, standardization, na),
		'C': groupOf("Commodities futures", commodityClass, futureDelivery, standardization, na),
	}},
	'S': {name: "Swaps", groups: map[byte]group{
		'R': groupOf("Rates",
			attr("Underlying assets", "A", "Basis swap (float-float)", "C", "Fixed-floating", "D", "Fixed-fixed",
				"G", "Inflation rate index", "H", "Overnight index swap (OIS)", "Z", "Zero coupon",
				"M", "Others (miscellaneous)"),
			attr("Notional", "C", "Constant", "I", "Accreting", "D", "Amortizing", "Y", "Custom (incl. combination)"),
			attr("Single or multi-currency", "S", "Single currency", "C", "Cross-currency"),
			cashPhysical),
		'T': groupOf("Commodities", commodityUnderlying,
			attr("Return or payout trigger", "C", "Contract for difference (CFD)", "T", "Total return"),
			na, swapDelivery),
		'E': groupOf("Equity",
			attr("Underlying assets", "S", "Single stock", "I", "Index", "B", "Basket", "M", "Others (miscellaneous)"),
			attr("Return or payout trigger", "P", "Price", "D", "Dividend", "V", "Variance", "L", "Volatility",
				"T", "Total return", "C", "Contract for difference (CFD)", "M", "Others (miscellaneous)"),
			na, swapDelivery),
		'C': groupOf("Credit",
			attr("Underlying assets", "U", "Single name", "V", "Index tranche", "I", "Index", "B", "Basket",
				"M", "Others (miscellaneous)"),
			attr("Return or payout trigger", "C", "Credit default", "T", "Total return", "M", "Others (miscellaneous)"),
			attr("Underlying issuer type", "C", "Corporate", "S", "Sovereign", "L", "Local"),
			attr("Delivery", "C", "Cash", "P", "Physical", "A", "Auction")),
		'F': groupOf("Foreign exchange",
			attr("Underlying assets", "A", "Spot-forward swap", "C", "Fixed-floating", "D", "Fixed-fixed",
				"M", "Others (miscellaneous)"),
			na, na,
			attr("Delivery", "P", "Physical", "N", "Non-deliverable")),
		'M': groupOf("Others (miscellaneous)",
			attr("Underlying assets", "P", "Commercial property", "M", "Others (miscellaneous)"),
			na, na, swapDelivery),
	}},
	'H': {name: "Non-listed and complex listed options", groups: map[byte]group{
		'R': groupOf("Rates",
			attr("Underlying assets", "A", "Basis swap (float-float)", "C", "Fixed-floating swap", "D", "Fixed-fixed swap",
				"G", "Interest rate index", "H", "Overnight index swap (OIS)", "O", "Options", "R", "Forwards",
				"F", "Futures", "M", "Others (miscellaneous)"),
			optionStyleType, valuationMethod, swapDelivery),
		'T': groupOf("Commodities", commodityUnderlying, optionStyleType, valuationMethod, swapDelivery),
		'E': groupOf("Equity",
			attr("Underlying assets", "S", "Single stock", "I", "Index", "B", "Basket", "O", "Options",
				"R", "Forwards", "F", "Futures", "M", "Others (miscellaneous)"),
			optionStyleType, valuationMethod, swapDelivery),
		'C': groupOf("Credit",
			attr("Underlying assets", "U", "CDS on a single name", "V", "CDS on an index tranche", "I", "CDS on an index",
				"W", "Swaptions", "M", "Others (miscellaneous)"),
			optionStyleType, valuationMethod, swapDelivery),
		'F': groupOf("Foreign exchange",
			attr("Underlying assets", "R", "Spot", "F", "Forward", "W", "Swaps", "T", "Futures", "M", "Others (miscellaneous)"),
			optionStyleType, valuationMethod, swapDelivery),
		'M': groupOf("Others (miscellaneous)",
			attr("Underlying assets", "P", "Commercial property", "M", "Others (miscellaneous)"),
			optionStyleType, valuationMethod, swapDelivery),
	}},
	'I': {name: "Spot", groups: map[byte]group{
		'F': groupOf("Foreign exchange", na, na, na, attr("Delivery", "P", "Physical")),
		'T': groupOf("Commodities", commodityUnderlying, na, na, attr("Delivery", "P", "Physical")),
	}},
	'J': {name: "Forwards", groups: map[byte]group{
		'E': groupOf("Equity",
			attr("Underlying assets", "S", "Single stock", "I", "Index", "B", "Basket", "O", "Options",
				"F", "Futures"),
			na, forwardReturn, cashPhysical),
		'F': groupOf("Foreign exchange",
			attr("Underlying assets", "T", "Spot", "R", "Forwards", "F", "Futures", "V", "Options", "M", "Others (miscellaneous)"),
			na, forwardReturn,
			attr("Delivery", "P", "Physical", "C", "Cash", "N", "Non-deliverable")),
		'C': groupOf("Credit",
			attr("Underlying assets", "A", "Single name", "I", "Index", "B", "Basket", "C", "CDS on a single name",
				"D", "CDS on an index", "G", "CDS on a basket", "O", "Options", "M", "Others (miscellaneous)"),
			na, forwardReturn, cashPhysical),
		'R': groupOf("Rates",
			attr("Underlying assets", "I", "Interest rate index", "O", "Options", "M", "Others (miscellaneous)"),
			na, forwardReturn, cashPhysical),
		'T': groupOf("Commodities", commodityUnderlying, na, forwardReturn, swapDelivery),
	}},
	'K': {name: "Strategies", groups: map[byte]group{
		'R': groupOf("Rates", na, na, na, na),
		'T': groupOf("Commodities", na, na, na, na),
		'E': groupOf("Equity", na, na, na, na),
		'C': groupOf("Credit", na, na, na, na),
		'F': groupOf("Foreign exchange", na, na, na, na),
		'Y': groupOf("Mixed assets", na, na, na, na),
		'M': groupOf("Others (miscellaneous)", na, na, na, na),
	}},
	'L': {name: "Financing", groups: map[byte]group{
		'L': groupOf("Loan-lease",
			attr("Underlying assets", "A", "Agriculture", "B", "Baskets", "J", "Energy", "K", "Metals",
				"N", "Environmental", "P", "Polypropylene products", "S", "Fertilizer", "T", "Paper",
				"M", "Others (miscellaneous)"),
			na, na, cashPhysical),
		'R': groupOf("Repurchase agreements",
			attr("Underlying assets", "G", "General collateral", "S", "Specific security collateral", "C", "Cash collateral"),
			attr("Termination", "F", "Flexible", "N", "Overnight", "O", "Open", "T", "Term"),
			na,
			attr("Delivery", "D", "Delivery versus payment", "H", "Hold-in-custody", "T", "Tri-party")),
		'S': groupOf("Securities lending",
			attr("Underlying assets", "C", "Cash collateral", "G", "Government bonds", "P", "Corporate bonds",
				"T", "Convertible bonds", "E", "Equity", "L", "Letter of credit", "D", "Certificate of deposit",
				"W", "Warrants", "K", "Money market instruments", "M", "Others (miscellaneous)"),
			attr("Termination", "N", "Overnight", "O", "Open", "T", "Term"),
			na,
			attr("Delivery", "D", "Delivery versus payment", "F", "Free of payment", "H", "Hold-in-custody", "T", "Tri-party")),
	}},
	'T': {name: "Referential instruments", groups: map[byte]group{
		'C': groupOf("Currencies",
			attr("Type", "N", "National currency", "L", "Legacy currency", "C", "Bullion coins", "M", "Others (miscellaneous)"),
			na, na, na),
		'T': groupOf("Commodities", commodityClass, na, na, na),
		'R': groupOf("Interest rates",
			attr("Type of interest rates", "N", "Nominal", "V", "Variable", "F", "Fixed", "R", "Real", "M", "Others (miscellaneous)"),
			attr("Frequency of calculation", "D", "Daily", "W", "Weekly", "N", "Monthly", "Q", "Quarterly",
				"S", "Semi-annually", "A", "Annually", "M", "Others (miscellaneous)"),
			na, na),
		'I': groupOf("Indices",
			attr("Asset classes", "E", "Equities", "D", "Debt", "F", "Collective investment vehicles", "R", "Real estate",
				"T", "Commodities", "C", "Currencies", "M", "Others (miscellaneous)"),
			attr("Weighting types", "P", "Price weighted", "C", "Capitalization weighted", "E", "Equal weighted",
				"F", "Modified market capitalization weighted", "M", "Others (miscellaneous)"),
			attr("Index return types", "P", "Price return", "N", "Net total return", "G", "Gross total return",
				"M", "Others (miscellaneous)"),
			na),
		'B': groupOf("Baskets",
			attr("Composition", "E", "Equities", "D", "Debt", "F", "Collective investment vehicles", "I", "Indices",
				"T", "Commodities", "C", "Currencies", "M", "Others (miscellaneous)"),
			na, na, na),
		'D': groupOf("Stock dividends",
			attr("Type of equity", "S", "Common/ordinary shares", "P", "Preferred/preference shares",
				"C", "Common/ordinary convertible shares", "F", "Preferred/preference convertible shares",
				"L", "Limited partnership units", "K", "Collective investment vehicles", "M", "Others (miscellaneous)"),
			na, na, na),
		'M': groupOf("Others (miscellaneous)", na, na, na, na),
	}},
	'M': {name: "Miscellaneous", groups: map[byte]group{
		'C': groupOf("Combined instruments",
			attr("Component", "S", "Combination of shares", "B", "Combination of bonds", "H", "Share(s) and bond(s)",
				"A", "Share(s) and warrant(s)", "W", "Warrant(s) and warrant(s)", "U", "Fund units and other components",
				"M", "Others (miscellaneous)"),
			ownershipRestrictions, na, form),
		'M': groupOf("Other assets",
			attr("Further grouping", "R", "Real estate deeds", "I", "Insurance policies", "E", "Escrow receipts",
				"T", "Trade finance instruments", "N", "Carbon credit", "P", "Precious metal receipts",
				"S", "Other OTC derivative products", "M", "Others (miscellaneous)"),
			na, na, na),
	}},
}
