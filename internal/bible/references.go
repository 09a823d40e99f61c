package bible

// DailyReferences feeds the verse of the day and the random verse.
var DailyReferences = []string{
	"John 3:16",
	"Psalm 23:1",
	"Philippians 4:13",
	"Jeremiah 29:11",
	"Proverbs 3:5-6",
	"Isaiah 40:31",
	"Romans 8:28",
	"Joshua 1:9",
	"Matthew 11:28",
	"Psalm 46:1",
	"2 Corinthians 5:17",
	"Galatians 5:22-23",
	"Hebrews 11:1",
	"Lamentations 3:22-23",
	"Psalm 119:105",
	"Matthew 6:33",
	"1 Peter 5:7",
	"Romans 12:2",
	"Ephesians 2:8-9",
	"Psalm 37:4",
	"Isaiah 41:10",
	"1 John 4:19",
	"Micah 6:8",
	"John 14:6",
	"Psalm 118:24",
	"Colossians 3:23",
	"James 1:5",
	"Romans 15:13",
	"Psalm 27:1",
	"Zephaniah 3:17",
	"2 Timothy 1:7",
}
