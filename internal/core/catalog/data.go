package catalog

var builtinAllergens = []Allergen{
	{ID: "peanuts", Name: "Peanuts", Description: "Allergic reaction to peanuts and peanut derivatives."},
	{ID: "shellfish", Name: "Shellfish", Description: "Includes shrimp, crab, lobster, and other shellfish."},
	{ID: "soy", Name: "Soy", Description: "Soybeans and soy-based products including tofu and soy sauce."},
	{ID: "gluten", Name: "Gluten", Description: "Found in wheat, barley, rye, and some oats."},
	{ID: "tree_nuts", Name: "Tree Nuts", Description: "Includes almonds, walnuts, cashews, and other tree nuts."},
	{ID: "sesame", Name: "Sesame", Description: "Sesame seeds and sesame oil."},
	{ID: "fish", Name: "Fish", Description: "Various fish species like cod, salmon, and tuna."},
	{ID: "eggs", Name: "Eggs", Description: "Eggs and egg-based products."},
}

var builtinDishes = []Dish{
	{
		ID:            "kung_pao_chicken",
		Name:          "Kung Pao Chicken",
		LocalizedName: "宫保鸡丁",
		Description:   "A spicy stir-fry dish with chicken, peanuts, vegetables, and chili peppers.",
		Allergens:     []string{"peanuts", "soy"},
		Ingredients:   []string{"chicken", "peanuts", "soy sauce", "chili peppers", "vegetables"},
		Region:        "Sichuan",
	},
	{
		ID:            "mapo_tofu",
		Name:          "Mapo Tofu",
		LocalizedName: "麻婆豆腐",
		Description:   "Soft tofu in a spicy sauce with minced meat.",
		Allergens:     []string{"soy"},
		Ingredients:   []string{"tofu", "ground pork", "doubanjiang", "soy sauce", "chili oil"},
		Region:        "Sichuan",
	},
	{
		ID:            "dim_sum",
		Name:          "Dim Sum",
		LocalizedName: "点心",
		Description:   "Various small dishes served in steamer baskets or small plates.",
		Allergens:     []string{"gluten", "shellfish", "soy", "sesame", "peanuts", "eggs"},
		Ingredients:   []string{"flour", "various fillings", "soy sauce"},
		Region:        "Cantonese",
	},
	{
		ID:            "chow_mein",
		Name:          "Chow Mein",
		LocalizedName: "炒面",
		Description:   "Stir-fried noodles with vegetables and protein.",
		Allergens:     []string{"gluten", "soy", "eggs"},
		Ingredients:   []string{"noodles", "vegetables", "protein", "soy sauce"},
		Region:        "Cantonese",
	},
	{
		ID:            "peking_duck",
		Name:          "Peking Duck",
		LocalizedName: "北京烤鸭",
		Description:   "Roasted duck known for its thin, crispy skin.",
		Allergens:     []string{"soy", "gluten"},
		Ingredients:   []string{"duck", "hoisin sauce", "pancakes", "scallions", "cucumber"},
		Region:        "Beijing",
	},
	{
		ID:            "hot_pot",
		Name:          "Hot Pot",
		LocalizedName: "火锅",
		Description:   "A communal meal with a simmering pot of soup stock and various ingredients.",
		Allergens:     []string{"shellfish", "fish", "soy", "gluten", "sesame"},
		Ingredients:   []string{"broth", "meats", "seafood", "vegetables", "tofu", "noodles"},
		Region:        "Various",
	},
	{
		ID:            "spring_rolls",
		Name:          "Spring Rolls",
		LocalizedName: "春卷",
		Description:   "Cylindrical appetizers filled with vegetables and sometimes meat.",
		Allergens:     []string{"gluten", "soy", "eggs"},
		Ingredients:   []string{"wheat flour wrapper", "vegetables", "sometimes meat", "soy sauce"},
		Region:        "Various",
	},
	{
		ID:            "fried_rice",
		Name:          "Fried Rice",
		LocalizedName: "炒饭",
		Description:   "Rice stir-fried with eggs, vegetables, and protein.",
		Allergens:     []string{"eggs", "soy"},
		Ingredients:   []string{"rice", "eggs", "vegetables", "protein", "soy sauce"},
		Region:        "Various",
	},
	{
		ID:            "sweet_and_sour_pork",
		Name:          "Sweet and Sour Pork",
		LocalizedName: "糖醋里脊",
		Description:   "Deep-fried pork with a sweet and tangy sauce.",
		Allergens:     []string{"gluten", "soy"},
		Ingredients:   []string{"pork", "flour", "vegetables", "sweet and sour sauce"},
		Region:        "Cantonese",
	},
	{
		ID:          "fortune_cookies",
		Name:        "Fortune Cookies",
		Description: "Crisp cookies with a paper fortune inside.",
		Allergens:   []string{"gluten", "eggs"},
		Ingredients: []string{"flour", "sugar", "vanilla", "eggs"},
		Region:      "American-Chinese",
	},
	{
		ID:            "wonton_soup",
		Name:          "Wonton Soup",
		LocalizedName: "馄饨汤",
		Description:   "Soup with filled dumplings and broth.",
		Allergens:     []string{"gluten", "shellfish", "eggs", "soy"},
		Ingredients:   []string{"flour", "shrimp or pork", "eggs", "broth", "vegetables"},
		Region:        "Cantonese",
	},
	{
		ID:            "dandan_noodles",
		Name:          "Dan Dan Noodles",
		LocalizedName: "担担面",
		Description:   "Spicy Sichuan noodles with preserved vegetables and minced meat.",
		Allergens:     []string{"gluten", "peanuts", "sesame", "soy"},
		Ingredients:   []string{"noodles", "preserved vegetables", "chili oil", "minced pork", "Sichuan peppercorns"},
		Region:        "Sichuan",
	},
	{
		ID:            "shrimp_dumplings",
		Name:          "Shrimp Dumplings (Har Gow)",
		LocalizedName: "虾饺",
		Description:   "Translucent dumplings filled with shrimp.",
		Allergens:     []string{"shellfish", "gluten"},
		Ingredients:   []string{"shrimp", "wheat starch", "tapioca starch", "bamboo shoots"},
		Region:        "Cantonese",
	},
	{
		ID:            "szechuan_fish",
		Name:          "Szechuan Fish",
		LocalizedName: "水煮鱼",
		Description:   "Poached fish in hot and spicy broth.",
		Allergens:     []string{"fish", "soy"},
		Ingredients:   []string{"fish fillets", "chili oil", "Sichuan peppercorns", "vegetables"},
		Region:        "Sichuan",
	},
	{
		ID:            "egg_tarts",
		Name:          "Egg Tarts",
		LocalizedName: "蛋挞",
		Description:   "Sweet pastry crust filled with egg custard.",
		Allergens:     []string{"eggs", "gluten"},
		Ingredients:   []string{"flour", "eggs", "sugar", "milk"},
		Region:        "Cantonese/Macau",
	},
}
