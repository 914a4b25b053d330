package symptom

// Symptom is one entry of the Ayurvedic symptom table served by the reference
// assistant.
type Symptom struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Keywords    []string `json:"keywords"`
	Symptoms    []string `json:"symptoms,omitempty"`
	Conditions  []string `json:"possibleConditions"`
	Severity    string   `json:"severity,omitempty"`
	SeekDoctor  string   `json:"seekDoctor"`
	Remedies    []string `json:"ayurvedicRemedies"`
	DietTips    []string `json:"dietTips"`
	Description string   `json:"description,omitempty"`
	Dosha       string   `json:"doshaImbalance,omitempty"` // dominant imbalance
}

// Seed returns the built-in symptom table in match priority order.
func Seed() []Symptom {
	return []Symptom{
		{
			ID:          "fever",
			Name:        "fever",
			Keywords:    []string{"fever", "high temperature", "temperature", "hot", "burning", "feverish", "body heat"},
			Symptoms:    []string{"chills", "sweating", "muscle aches", "body pain", "shivering", "fatigue", "weakness"},
			Conditions:  []string{"Jwara (Ayurvedic fever)", "Vata-Pitta imbalance", "Seasonal fever", "Viral infection", "Bacterial infection"},
			Severity:    "moderate",
			SeekDoctor:  "If temperature exceeds 103°F (39.4°C), lasts more than 3 days, or is accompanied by severe headache, stiff neck, rash, or difficulty breathing",
			Remedies:    []string{"Tulsi (Holy Basil) tea with honey - 2-3 cups daily", "Ginger and turmeric infusion - 1 teaspoon each in hot water", "Peppermint tea for cooling effects - 2 cups daily", "Sandalwood paste applied to forehead", "Coriander seed tea - 1 teaspoon seeds in hot water"},
			DietTips:    []string{"Stay hydrated with warm fluids like herbal teas and clear broths", "Consume light, easily digestible foods such as khichdi (rice and lentil porridge)", "Avoid heavy, oily, and spicy foods that can increase body heat", "Include cooling foods like cucumber, watermelon, and coconut water", "Avoid dairy products until fever subsides"},
			Description: "Fever is the body's natural defense mechanism against infection. It helps the immune system fight pathogens by raising body temperature. In Ayurveda, fever (Jwara) is considered an imbalance of doshas, particularly Pitta.",
			Dosha:       "Primarily Pitta with secondary Vata involvement",
		},
		{
			ID:          "cold",
			Name:        "cold",
			Keywords:    []string{"cold", "cough", "sore throat", "runny nose", "congestion", "sneezing", "flu", "stuffy nose"},
			Symptoms:    []string{"nasal congestion", "sneezing", "fatigue", "headache", "sore throat", "coughing", "mild fever"},
			Conditions:  []string{"Urdhva Jatrugata Vata (Upper respiratory issues)", "Kapha imbalance", "Common cold", "Seasonal allergies", "Rhinitis"},
			Severity:    "mild to moderate",
			SeekDoctor:  "If symptoms persist beyond a week, worsen suddenly, or are accompanied by high fever, severe headache, or difficulty breathing",
			Remedies:    []string{"Ginger tea with lemon and honey - 3-4 cups daily", "Steam inhalation with eucalyptus oil - 2-3 times daily", "Tulsi and black pepper decoction - 2 cups daily", "Turmeric milk (Golden milk) before bedtime", "Cinnamon and honey mixture - 1 teaspoon twice daily"},
			DietTips:    []string{"Warm soups and broths, especially with garlic and ginger", "Avoid cold drinks and foods that increase Kapha", "Include spices like turmeric, black pepper, and cinnamon in meals", "Stay hydrated with warm herbal teas", "Consume light, warm meals and avoid heavy, processed foods"},
			Description: "The common cold is a viral infection affecting the upper respiratory tract. In Ayurveda, it's often associated with an imbalance of Kapha dosha and is called Pratishyaya. Cold weather, weakened immunity, and improper digestion can contribute to its occurrence.",
			Dosha:       "Primarily Kapha with possible Vata involvement",
		},
		{
			ID:          "stomach-pain",
			Name:        "stomach pain",
			Keywords:    []string{"stomach pain", "abdominal pain", "cramps", "stomach ache", "indigestion", "gastric", "belly pain", "tummy ache"},
			Symptoms:    []string{"bloating", "nausea", "diarrhea", "constipation", "gas", "heartburn", "loss of appetite"},
			Conditions:  []string{"Amlapitta (Acidity)", "Gastritis", "Vata imbalance", "Irritable Bowel Syndrome (IBS)", "Indigestion (Ajirna)"},
			Severity:    "variable",
			SeekDoctor:  "If pain is severe, persistent, accompanied by vomiting, fever, or blood in stool, or if there is significant weight loss",
			Remedies:    []string{"Warm water with lemon and honey on an empty stomach", "Ginger tea to soothe digestion - 2-3 cups daily", "Fennel seeds after meals - 1 teaspoon", "Triphala powder with warm water before bed - 1/2 teaspoon", "Cumin, coriander, and fennel tea (CCF tea) - 2 cups daily"},
			DietTips:    []string{"Eat small, frequent meals instead of large ones", "Avoid fried, spicy, and processed foods", "Include probiotics like yogurt and fermented foods", "Avoid eating when stressed or emotional", "Chew food thoroughly and eat in a calm environment"},
			Description: "Stomach pain can result from various conditions affecting the digestive system. In Ayurveda, it's often linked to imbalances in Agni (digestive fire) and can involve any of the three doshas. Proper digestion is considered fundamental to overall health.",
		},
		{
			ID:          "joint-pain",
			Name:        "joint pain",
			Keywords:    []string{"joint pain", "arthritis", "inflammation", "stiffness", "swollen joints", "knee pain", "shoulder pain", "joint stiffness"},
			Symptoms:    []string{"swelling", "stiffness", "reduced mobility", "warmth around joints", "redness", "tenderness"},
			Conditions:  []string{"Vata imbalance", "Amavata (Rheumatoid arthritis)", "Sandhigata Vata (Osteoarthritis)", "Gout", "Inflammatory arthritis"},
			Severity:    "moderate to severe",
			SeekDoctor:  "If pain is severe, joints are significantly swollen or red, or if you experience fever, unexplained weight loss, or inability to move the joint",
			Remedies:    []string{"Turmeric and ginger paste applied to joints - twice daily", "Warm sesame oil massage (Abhyanga) - daily", "Fenugreek seeds soaked overnight - consume water and seeds in morning", "Ashwagandha powder with warm milk - 1 teaspoon before bed", "Guggulu supplements as advised by an Ayurvedic practitioner"},
			DietTips:    []string{"Include anti-inflammatory foods like berries, leafy greens, and fatty fish", "Stay well-hydrated throughout the day", "Limit sugar, refined carbohydrates, and processed foods", "Incorporate turmeric, ginger, and boswellia in cooking", "Avoid nightshade vegetables if they worsen symptoms"},
			Description: "Joint pain is commonly associated with Vata imbalance in Ayurveda. It can result from aging, injury, overuse, or accumulation of Ama (toxins) in the joints. Maintaining proper joint function through diet, exercise, and herbal remedies is emphasized in Ayurvedic treatment.",
		},
		{
			ID:          "headache",
			Name:        "headache",
			Keywords:    []string{"headache", "migraine", "pain in head", "tension headache", "sinus headache", "head pain", "throbbing head"},
			Symptoms:    []string{"nausea", "sensitivity to light", "blurred vision", "dizziness", "fatigue", "irritability", "neck stiffness"},
			Conditions:  []string{"Migraine", "Tension headache", "Cluster headache", "Shiroroga (Ayurvedic head disorders)", "Sinus-related headache"},
			Severity:    "variable",
			SeekDoctor:  "If headaches are frequent, severe, accompanied by fever, confusion, stiff neck, or occur after a head injury",
			Remedies:    []string{"Peppermint oil application on temples - as needed", "Ginger tea for nausea - 2-3 cups during episodes", "Rest in a dark, quiet room during acute episodes", "Brahmi (Bacopa) paste applied to forehead", "Shirodhara (oil pouring therapy) performed by an Ayurvedic practitioner"},
			DietTips:    []string{"Stay well-hydrated throughout the day", "Avoid skipping meals which can trigger headaches", "Limit caffeine and alcohol consumption", "Identify and avoid personal food triggers (common ones include aged cheese, chocolate, and MSG)", "Maintain regular meal times"},
			Description: "Headaches in Ayurveda are classified under Shiroroga (diseases of the head) and can be caused by imbalances in any of the three doshas. Stress, poor digestion, sensory overload, and irregular lifestyle are common contributors to headaches.",
		},
		{
			ID:          "insomnia",
			Name:        "insomnia",
			Keywords:    []string{"insomnia", "sleeplessness", "trouble sleeping", "can't sleep", "sleep problems", "sleep disorder", "difficulty sleeping", "poor sleep"},
			Symptoms:    []string{"difficulty falling asleep", "waking up frequently", "early morning awakening", "daytime fatigue", "irritability", "difficulty concentrating", "anxiety about sleep"},
			Conditions:  []string{"Vata imbalance", "Anidra (Ayurvedic sleep disorder)", "Chronic insomnia", "Stress-induced sleep disturbance", "Pitta aggravation"},
			Severity:    "mild to severe",
			SeekDoctor:  "If insomnia persists for more than a month, significantly affects daily functioning, or is accompanied by depression or anxiety",
			Remedies:    []string{"Warm milk with nutmeg and cardamom before bed", "Ashwagandha powder with warm water - 1 teaspoon before bedtime", "Oil massage to feet with warm sesame oil before sleep", "Brahmi (Bacopa) and Jatamansi tea in the evening", "Shirodhara therapy for chronic cases"},
			DietTips:    []string{"Avoid heavy meals within 3 hours of bedtime", "Limit caffeine, especially after noon", "Reduce alcohol consumption which disrupts sleep cycles", "Include sleep-promoting foods like bananas, almonds, and cherries", "Sip warm herbal teas like chamomile or valerian root before bed"},
			Description: "Insomnia in Ayurveda is known as Anidra and is often associated with Vata imbalance. Regular sleep is considered essential for health, and establishing a consistent sleep routine (Dinacharya) is emphasized for maintaining balance of the doshas.",
		},
		{
			ID:          "anxiety",
			Name:        "anxiety",
			Keywords:    []string{"anxiety", "stress", "worry", "nervousness", "panic", "tension", "anxious", "overthinking"},
			Symptoms:    []string{"excessive worry", "restlessness", "fatigue", "difficulty concentrating", "irritability", "muscle tension", "sleep disturbance", "rapid heartbeat"},
			Conditions:  []string{"Vata imbalance", "Chittodvega (Ayurvedic anxiety disorder)", "Generalized anxiety", "Stress-related disorder", "Panic disorder"},
			Severity:    "mild to severe",
			SeekDoctor:  "If anxiety interferes with daily activities, relationships, or work, or if it's accompanied by depression or thoughts of self-harm",
			Remedies:    []string{"Brahmi (Bacopa) tea or supplements - daily", "Ashwagandha powder with warm milk - 1 teaspoon before bed", "Jatamansi (Spikenard) tincture as directed by practitioner", "Shirodhara therapy (oil pouring on forehead)", "Regular Abhyanga (oil massage) with sesame or brahmi oil"},
			DietTips:    []string{"Favor warm, nourishing, and grounding foods", "Limit caffeine, sugar, and processed foods", "Include omega-3 rich foods like flaxseeds and walnuts", "Maintain regular meal times", "Sip calming herbal teas like chamomile, lavender, or holy basil throughout the day"},
			Description: "Anxiety in Ayurveda is primarily associated with Vata imbalance and is called Chittodvega. It's considered a disturbance of the mind (Manas) and is treated through a combination of lifestyle adjustments, diet, herbs, meditation, and therapeutic procedures.",
		},
		{
			ID:          "skin-rash",
			Name:        "skin rash",
			Keywords:    []string{"skin rash", "itching", "eczema", "dermatitis", "skin irritation", "hives", "skin allergy", "itchy skin"},
			Symptoms:    []string{"redness", "itching", "inflammation", "dry or scaly skin", "bumps or blisters", "burning sensation", "swelling"},
			Conditions:  []string{"Pitta imbalance", "Kushtha (Ayurvedic skin disorders)", "Eczema (Vicharchika)", "Contact dermatitis", "Allergic reaction"},
			Severity:    "mild to moderate",
			SeekDoctor:  "If the rash covers a large area, is painful, blisters, spreads rapidly, or is accompanied by fever or difficulty breathing",
			Remedies:    []string{"Aloe vera gel applied topically - 2-3 times daily", "Neem leaf paste for affected areas", "Coconut oil mixed with turmeric for application", "Triphala powder with water internally - 1/2 teaspoon daily", "Manjistha tea or supplement for blood purification"},
			DietTips:    []string{"Avoid hot, spicy, and fermented foods that increase Pitta", "Include cooling foods like cucumber, coconut, and sweet fruits", "Stay hydrated with water and coconut water", "Avoid common allergens like dairy if sensitive", "Include bitter greens like dandelion and cilantro for detoxification"},
			Description: "Skin rashes in Ayurveda are often associated with Pitta imbalance or accumulation of toxins (Ama) in the body. They are classified under Kushtha (skin disorders) and treatment focuses on both internal purification and external applications.",
		},
	}
}
