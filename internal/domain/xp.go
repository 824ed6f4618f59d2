package domain

// Денежная математика ведется в целых числах (basis points, 1/10000),
// плавающая точка в расчетах запрещена.
const (
	bpDenominator int64 = 10000

	// VCPerVPRateBP фиксированный курс конвертации VP -> VC при расчете
	// с продавцом: 1 VP = 0.75 VC. Кредит продавца всегда округляется вниз,
	// возврат покупателю не конвертируется и потому точен.
	VCPerVPRateBP int64 = 7500

	// xpRateX2BP ставка опыта 0.67, умноженная на двойку из формулы
	// xp = floor(amount * 0.67 * (2 * multiplier)).
	xpRateX2BP int64 = 134
)

// Дефолтные множители опыта по виду транзакции, в сотых долях (100 = x1).
const (
	MultiplierTipBP     int64 = 100
	MultiplierPackBP    int64 = 150
	MultiplierServiceBP int64 = 200
)

// DefaultMultiplierBP возвращает множитель опыта для вида транзакции.
func DefaultMultiplierBP(kind XPTransactionKind) int64 {
	switch kind {
	case XPKindPackPurchase:
		return MultiplierPackBP
	case XPKindServicePurchase:
		return MultiplierServiceBP
	default:
		return MultiplierTipBP
	}
}

// ComputeXP вычисляет опыт за транзакцию: floor(amount * 0.67 * 2 * multiplier).
// Функция чистая: одинаковые аргументы всегда дают одинаковый результат.
// Явный overrideBP имеет приоритет над дефолтом по виду транзакции.
func ComputeXP(kind XPTransactionKind, amount int64, overrideBP *int64) int64 {
	if amount <= 0 {
		return 0
	}
	multBP := DefaultMultiplierBP(kind)
	if overrideBP != nil {
		multBP = *overrideBP
	}
	return amount * xpRateX2BP * multBP / bpDenominator
}

// SellerCreditVC конвертирует замороженную сумму VP в кредит продавца VC
// по фиксированному курсу, с округлением вниз.
func SellerCreditVC(vpAmount int64) int64 {
	return vpAmount * VCPerVPRateBP / bpDenominator
}

// ResolveTier возвращает тир с наибольшим Order, чей порог не превышает
// накопленный опыт. Если ни один порог не подошел (таблица без нулевого
// порога), возвращается самый младший тир.
func ResolveTier(cumulativeXP int64, tiers []EloTier) *EloTier {
	var current *EloTier
	var lowest *EloTier
	for i := range tiers {
		t := &tiers[i]
		if lowest == nil || t.Order < lowest.Order {
			lowest = t
		}
		if t.XPThreshold > cumulativeXP {
			continue
		}
		if current == nil || t.Order > current.Order {
			current = t
		}
	}
	if current == nil {
		return lowest
	}
	return current
}

// NextTier возвращает следующий по порядку тир или nil, если юзер на максимуме.
func NextTier(current *EloTier, tiers []EloTier) *EloTier {
	if current == nil {
		return nil
	}
	var next *EloTier
	for i := range tiers {
		t := &tiers[i]
		if t.Order <= current.Order {
			continue
		}
		if next == nil || t.Order < next.Order {
			next = t
		}
	}
	return next
}

// ComputeProgress возвращает прогресс до следующего тира в процентах,
// зажатый в [0, 100]. nil - юзер на максимальном тире.
func ComputeProgress(cumulativeXP int64, current, next *EloTier) *float64 {
	if current == nil || next == nil {
		return nil
	}
	span := next.XPThreshold - current.XPThreshold
	if span <= 0 {
		p := float64(100)
		return &p
	}
	gained := cumulativeXP - current.XPThreshold
	// сотые доли процента целочисленно, float только для отображения.
	hundredths := gained * bpDenominator / span
	if hundredths < 0 {
		hundredths = 0
	}
	if hundredths > bpDenominator {
		hundredths = bpDenominator
	}
	p := float64(hundredths) / 100
	return &p
}
