package constant

type InfoSection struct {
	Heading string
	Body    string
}

const InfoTitle = "Welcome to MindEase!"

var InfoSections = []InfoSection{
	{
		Heading: "Prevalence",
		Body:    "Mental health disorders are prevalent in the United States, with an estimated 1 in 5 adults experiencing a mental illness each year.",
	},
	{
		Heading: "Specific Disorders",
		Body: "Anxiety disorders are the most common mental illness in the U.S., affecting 40 million adults aged 18 and older, " +
			"or about 18.1% of the population every year. Major depressive disorder affects approximately 17.3 million adults, " +
			"or about 7.1% of the U.S. population. Bipolar disorder affects approximately 4.4% of adults in the U.S. at some point " +
			"in their lives. Schizophrenia affects about 1.1% of the U.S. adult population.",
	},
	{
		Heading: "Children and Adolescents",
		Body: "Approximately 7.7% of children aged 3-17 years (about 4.5 million) have diagnosed anxiety, while 3.2% " +
			"(about 1.9 million) have diagnosed depression. Half of all lifetime cases of mental illness begin by age 14, and 75% by age 24.",
	},
	{
		Heading: "Treatment Gap",
		Body: "Despite the high prevalence of mental health conditions, nearly 60% of adults and nearly 50% of children aged 6-17 " +
			"with a mental illness did not receive mental health services in the previous year. Cost, lack of access to care, " +
			"stigma, and shortage of mental health professionals are significant barriers to accessing treatment.",
	},
	{
		Heading: "Substance Abuse",
		Body: "Mental health disorders often co-occur with substance abuse disorders. In 2019, 9.5% of adults (aged 18 and older) " +
			"had a substance use disorder (SUD) in the past year, including 14.5 million adults with an alcohol use disorder " +
			"and 8.8 million with an illicit drug use disorder.",
	},
	{
		Heading: "Suicide",
		Body: "Suicide is a leading cause of death in the United States. In 2019, there were 47,511 recorded suicides, making it " +
			"the 10th leading cause of death overall. Suicide rates are highest among American Indian and Alaska Native populations, " +
			"followed by white populations.",
	},
	{
		Body: "These statistics highlight the significant impact of mental health disorders in the United States and the importance " +
			"of increasing access to mental health services, reducing stigma, and promoting mental wellness across all age groups.",
	},
}
