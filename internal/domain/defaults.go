package domain

// DefaultCatalog возвращает стартовый справочник магазина. Засевается в БД
// при первом запуске (см. app.seedCatalog).
func DefaultCatalog() Catalog {
	return Catalog{
		RoomTypes: []RoomType{
			{ID: "bedroom", Name: "Спальня", Icon: "🛏️", Description: "Уютная атмосфера для отдыха"},
			{ID: "kitchen", Name: "Кухня", Icon: "🍳", Description: "Практичность и стиль"},
			{ID: "living_room", Name: "Гостиная", Icon: "🛋️", Description: "Центр семейной жизни"},
			{ID: "office", Name: "Офис", Icon: "💼", Description: "Концентрация и продуктивность"},
			{ID: "kids_room", Name: "Детская", Icon: "🧸", Description: "Безопасность и яркие цвета"},
			{ID: "attic", Name: "Мансарда", Icon: "🏠", Description: "Уникальное пространство"},
			{ID: "balcony", Name: "Балкон", Icon: "🌿", Description: "Расширение жилого пространства"},
		},
		WindowTypes: []WindowType{
			{ID: "standard", Name: "Стандартные", SummaryLabel: "Стандартные окна", Icon: "🪟", Description: "Классические прямоугольные окна"},
			{ID: "mansard", Name: "Мансардные", SummaryLabel: "Мансардные окна", Icon: "🏚️", Description: "Наклонные окна в чердаке"},
			{ID: "balcony", Name: "Балконные", SummaryLabel: "Балконные окна", Icon: "🌺", Description: "Двери на балкон с окнами"},
			{ID: "arched", Name: "Арочные", SummaryLabel: "Арочные окна", Icon: "🏛️", Description: "Элегантные арочные формы"},
			{ID: "trapezoid", Name: "Трапециевидные", SummaryLabel: "Трапециевидные окна", Icon: "🔺", Description: "Современная геометрия"},
		},
		Products: []Product{
			{
				ID:                  "plisse_premium",
				Name:                "Плиссе Премиум",
				Description:         "Элегантные плиссированные шторы с премиум-тканью",
				Image:               "/images/products/plisse-premium.jpg",
				BasePrice:           3500,
				ARReady:             true,
				CompatibleMaterials: []string{"fabric_premium", "fabric_eco"},
				CompatibleRooms:     []string{"bedroom", "living_room", "office"},
			},
			{
				ID:                  "rolshtory_classic",
				Name:                "Рольшторы Классик",
				Description:         "Классические рулонные шторы для любого интерьера",
				Image:               "/images/products/rolshtory-classic.jpg",
				BasePrice:           2800,
				ARReady:             true,
				CompatibleMaterials: []string{"fabric_eco", "plastic"},
				CompatibleRooms:     []string{"kitchen", "office", "kids_room"},
			},
			{
				ID:                  "zhalyuzi_aluminum",
				Name:                "Жалюзи Алюминиевые",
				Description:         "Практичные алюминиевые жалюзи с защитой от солнца",
				Image:               "/images/products/zhalyuzi-aluminum.jpg",
				BasePrice:           2200,
				ARReady:             false,
				CompatibleMaterials: []string{"aluminum"},
				CompatibleRooms:     []string{"kitchen", "office", "balcony"},
			},
			{
				ID:                  "markizy_terrace",
				Name:                "Маркизы Терраса",
				Description:         "Уличные маркизы для террас и балконов",
				Image:               "/images/products/markizy-terrace.jpg",
				BasePrice:           4500,
				ARReady:             true,
				CompatibleMaterials: []string{"aluminum", "fabric_premium"},
				CompatibleRooms:     []string{"balcony", "attic"},
			},
		},
		Materials: []Material{
			{ID: "fabric_premium", Name: "Премиум ткань", PriceDelta: 1500, Color: "#8B4513"},
			{ID: "fabric_eco", Name: "Эко-ткань", PriceDelta: 800, Color: "#228B22"},
			{ID: "aluminum", Name: "Алюминий", PriceDelta: 1200, Color: "#C0C0C0"},
			{ID: "wood", Name: "Дерево", PriceDelta: 2000, Color: "#8B4513"},
			{ID: "plastic", Name: "Пластик", PriceDelta: 500, Color: "#FFFFFF"},
		},
		AdditionalOptions: []AdditionalOption{
			{ID: "smart_control", Name: "Умное управление", PriceDelta: 2500, Icon: "📱"},
			{ID: "remote_control", Name: "Пульт ДУ", PriceDelta: 800, Icon: "🎮"},
			{ID: "timer", Name: "Таймер", PriceDelta: 500, Icon: "⏰"},
			{ID: "sensor", Name: "Датчик света", PriceDelta: 1200, Icon: "💡"},
			{ID: "child_safety", Name: "Детская безопасность", PriceDelta: 600, Icon: "👶"},
		},
		Recommendations: map[string][]string{
			"bedroom_standard":     {"plisse_premium", "rolshtory_classic"},
			"kitchen_standard":     {"zhalyuzi_aluminum", "markizy_kitchen"},
			"living_room_standard": {"rolshtory_premium", "plisse_eco"},
			"office_standard":      {"zhalyuzi_wood", "rolstavni_office"},
			"kids_room_standard":   {"plisse_safe", "zhalyuzi_plastic"},
			"attic_mansard":        {"rolshtory_mansard", "plisse_mansard"},
			"balcony_balcony":      {"markizy_balcony", "zhalyuzi_balcony"},
		},
		Pricing: DefaultPricingTable(),
	}
}
